package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// stubClassifier is a canned external classifier for tests
type stubClassifier struct {
	positive bool
	err      error
}

func (s *stubClassifier) Classify(ctx context.Context, text, conversationID, userID string) (bool, error) {
	return s.positive, s.err
}

func (s *stubClassifier) Enabled() bool { return true }

func newTestClassifier(external ExternalClassifier) *RiskClassifier {
	cfg := config.DefaultRiskConfig()
	if external == nil {
		external = NewExternalClassifier(config.ClassifierConfig{Enabled: false}, logger.NewDefault())
	}
	return NewRiskClassifier(cfg, external, logger.NewDefault())
}

func TestClassifyTiers(t *testing.T) {
	c := newTestClassifier(nil)

	tests := []struct {
		text string
		want models.RiskLevel
	}{
		{"The weather is nice today", models.RiskLevelLow},
		{"I feel really sad and overwhelmed lately", models.RiskLevelMedium},
		{"I feel hopeless and worthless, I can't go on anymore", models.RiskLevelHigh},
		{"I want to kill myself tonight", models.RiskLevelCritical},
	}

	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.text, nil)
		if got.RiskLevel != tt.want {
			t.Errorf("Classify(%q) = %s (score %d), want %s", tt.text, got.RiskLevel, got.Score, tt.want)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := newTestClassifier(nil)

	got := c.Classify(context.Background(), "   ", nil)
	if got.RiskLevel != models.RiskLevelLow {
		t.Errorf("expected low tier, got %s", got.RiskLevel)
	}
	if got.Score != 0 {
		t.Errorf("expected zero score, got %d", got.Score)
	}
	if got.RecommendedAction != models.ActionNone {
		t.Errorf("expected no_action, got %s", got.RecommendedAction)
	}
}

func TestClassifyExternalPositiveForcesCritical(t *testing.T) {
	c := newTestClassifier(&stubClassifier{positive: true})

	// Lexicon alone would keep this at medium
	got := c.Classify(context.Background(), "I feel really sad and overwhelmed lately", nil)
	if got.RiskLevel != models.RiskLevelCritical {
		t.Errorf("positive external signal should force critical, got %s", got.RiskLevel)
	}
	if got.ExternalPositive == nil || !*got.ExternalPositive {
		t.Error("external signal should be recorded on the assessment")
	}
}

func TestClassifyExternalFailureDegrades(t *testing.T) {
	c := newTestClassifier(&stubClassifier{err: errors.New("connection refused")})

	got := c.Classify(context.Background(), "I want to kill myself tonight", nil)
	if got.RiskLevel != models.RiskLevelCritical {
		t.Errorf("lexicon result should survive external failure, got %s", got.RiskLevel)
	}
	if got.ExternalPositive != nil {
		t.Error("failed external call must leave the signal absent, not negative")
	}
}

func TestClassifyNegativeExternalDoesNotLowerTier(t *testing.T) {
	c := newTestClassifier(&stubClassifier{positive: false})

	got := c.Classify(context.Background(), "I want to kill myself tonight", nil)
	if got.RiskLevel != models.RiskLevelCritical {
		t.Errorf("negative external signal must not lower the tier, got %s", got.RiskLevel)
	}
	if got.ExternalPositive == nil || *got.ExternalPositive {
		t.Error("negative signal should be recorded as false")
	}
}

func TestConfidenceMonotoneAndCapped(t *testing.T) {
	c := newTestClassifier(nil)

	low := c.Classify(context.Background(), "I feel sad", nil)
	high := c.Classify(context.Background(), "I want to kill myself tonight, I have pills", nil)
	if high.Confidence <= low.Confidence {
		t.Errorf("confidence should grow with score: %f vs %f", high.Confidence, low.Confidence)
	}

	// Stack every signal source; the blend must stay capped
	forced := newTestClassifier(&stubClassifier{positive: true})
	maxed := forced.Classify(context.Background(),
		"I want to kill myself tonight, I have pills, suicide is my final decision and I know exactly how", nil)
	if maxed.Confidence > 1.0 {
		t.Errorf("confidence exceeded cap: %f", maxed.Confidence)
	}
	if maxed.Confidence < 0.99 {
		t.Errorf("expected near-maximal confidence, got %f", maxed.Confidence)
	}
}

func TestRecommendedActionMapping(t *testing.T) {
	tests := []struct {
		level models.RiskLevel
		want  models.RecommendedAction
	}{
		{models.RiskLevelLow, models.ActionNone},
		{models.RiskLevelMedium, models.ActionMonitorAndReview},
		{models.RiskLevelHigh, models.ActionEscalateToProfessional},
		{models.RiskLevelCritical, models.ActionImmediateEscalation},
	}
	for _, tt := range tests {
		if got := RecommendedActionFor(tt.level); got != tt.want {
			t.Errorf("RecommendedActionFor(%s) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestCrisisResourcesMarkers(t *testing.T) {
	critical := CrisisResources(models.RiskLevelCritical)
	for _, marker := range []string{"IMMEDIATE HELP AVAILABLE", "988", "741741"} {
		if !strings.Contains(critical, marker) {
			t.Errorf("critical resources missing %q", marker)
		}
	}

	high := CrisisResources(models.RiskLevelHigh)
	if !strings.Contains(high, "988") {
		t.Error("high-tier resources missing 988 lifeline")
	}

	if CrisisResources(models.RiskLevelLow) == "" {
		t.Error("default resources should not be empty")
	}
}
