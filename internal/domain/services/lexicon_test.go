package services

import (
	"testing"

	"mindguard-lab/internal/config"
)

func TestFindAllWordBoundaries(t *testing.T) {
	lex := NewPatternLexicon(config.DefaultRiskConfig().Weights)

	var methods *LexiconCategory
	for i := range lex.Categories {
		if lex.Categories[i].Name == "method_reference" {
			methods = &lex.Categories[i]
		}
	}
	if methods == nil {
		t.Fatal("method_reference category missing")
	}

	// "rope" must not fire inside "Europe"
	if got := methods.FindAll("I am traveling across Europe next month"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
	if got := methods.FindAll("there is a rope in the garage"); len(got) != 1 || got[0] != "rope" {
		t.Errorf("expected [rope], got %v", got)
	}
}

func TestFindAllCaseInsensitive(t *testing.T) {
	lex := NewPatternLexicon(config.DefaultRiskConfig().Weights)
	direct := &lex.Categories[0]

	if got := direct.FindAll("I WANT TO KILL MYSELF"); len(got) != 1 {
		t.Errorf("expected 1 match, got %v", got)
	}
}

func TestPatternLexiconOrder(t *testing.T) {
	lex := NewPatternLexicon(config.DefaultRiskConfig().Weights)

	want := []string{
		"direct_threat",
		"method_reference",
		"temporal_marker",
		"indirect_ideation",
		"emotional_distress",
	}
	if len(lex.Categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(lex.Categories))
	}
	for i, name := range want {
		if string(lex.Categories[i].Name) != name {
			t.Errorf("category %d: expected %s, got %s", i, name, lex.Categories[i].Name)
		}
	}
}

func TestBaselineFlag(t *testing.T) {
	if !BaselineFlag("I have been thinking about suicide") {
		t.Error("expected baseline flag for suicide keyword")
	}
	if BaselineFlag("I had a lovely day at the beach") {
		t.Error("unexpected baseline flag for neutral text")
	}
}
