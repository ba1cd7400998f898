package services

import (
	"testing"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
)

func newTestAnalyzer() *ContextAnalyzer {
	cfg := config.DefaultRiskConfig()
	return NewContextAnalyzer(cfg.Weights, cfg.Context, newTestScorer())
}

func userMsg(content string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleUser, Content: content}
}

func assistantMsg(content string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleAssistant, Content: content}
}

func TestAnalyzeContextualCues(t *testing.T) {
	a := newTestAnalyzer()

	score, cues := a.Analyze("I have access to pills and I have been planning", nil)
	// means access (5) + plan formation (5)
	if score != 10 {
		t.Errorf("expected score 10, got %d (cues: %v)", score, cues)
	}
	if len(cues) != 2 {
		t.Errorf("expected 2 cues, got %v", cues)
	}
}

func TestAnalyzeNilContext(t *testing.T) {
	a := newTestAnalyzer()

	score, cues := a.Analyze("The weather is nice", nil)
	if score != 0 || cues != nil {
		t.Errorf("expected zero score and no cues, got %d %v", score, cues)
	}
}

func TestEscalationOverTime(t *testing.T) {
	a := newTestAnalyzer()

	ctx := &ConversationContext{
		Messages: []models.ChatMessage{
			userMsg("I feel hopeless"),
			assistantMsg("I'm sorry you're feeling this way"),
			userMsg("I feel worthless and broken"),
			assistantMsg("That sounds really hard"),
		},
	}

	score, cues := a.Analyze("nothing matches here", ctx)
	if score != 4 {
		t.Errorf("expected escalation bonus 4, got %d", score)
	}
	if len(cues) != 1 {
		t.Fatalf("expected exactly one cue, got %v", cues)
	}
	if cues[0].Category != models.CategoryEscalation {
		t.Errorf("expected escalation category, got %s", cues[0].Category)
	}
	if cues[0].Matched != EscalatingPatternCue {
		t.Errorf("unexpected cue text: %q", cues[0].Matched)
	}
}

func TestEscalationRequiresMultipleHits(t *testing.T) {
	a := newTestAnalyzer()

	ctx := &ConversationContext{
		Messages: []models.ChatMessage{
			userMsg("I feel hopeless"),
			userMsg("what should I make for dinner"),
		},
	}

	score, _ := a.Analyze("nothing matches here", ctx)
	if score != 0 {
		t.Errorf("single risk hit should not earn the bonus, got %d", score)
	}
}

func TestEscalationIgnoresAssistantMessages(t *testing.T) {
	a := newTestAnalyzer()

	// Risk language authored by the assistant must not count toward the bonus
	ctx := &ConversationContext{
		Messages: []models.ChatMessage{
			assistantMsg("some people feel hopeless in these situations"),
			assistantMsg("feeling worthless is a common symptom"),
			userMsg("thanks"),
		},
	}

	score, _ := a.Analyze("nothing matches here", ctx)
	if score != 0 {
		t.Errorf("assistant messages must not trigger the bonus, got %d", score)
	}
}

func TestEscalationWindowLimitsHistory(t *testing.T) {
	a := newTestAnalyzer()

	// Old risk messages pushed out of the window should not count
	messages := []models.ChatMessage{
		userMsg("I feel hopeless"),
		userMsg("I feel worthless"),
	}
	for i := 0; i < 5; i++ {
		messages = append(messages, userMsg("talking about the garden"))
	}

	score, _ := a.Analyze("nothing matches here", &ConversationContext{Messages: messages})
	if score != 0 {
		t.Errorf("messages outside the window should not count, got %d", score)
	}
}
