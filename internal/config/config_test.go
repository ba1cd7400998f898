package config

import "testing"

func TestApplyRiskDefaultsFillsUnsetKnobs(t *testing.T) {
	rc := RiskConfig{}
	rc.Weights.DirectThreat = 12
	rc.Thresholds.Critical = 20
	rc.Confidence.ExternalWeight = 0.5

	applyRiskDefaults(&rc)

	if rc.Weights.DirectThreat != 12 {
		t.Errorf("overridden weight lost: %d", rc.Weights.DirectThreat)
	}
	if rc.Weights.MethodReference != 8 || rc.Weights.EmotionalDistress != 3 {
		t.Errorf("unset weights should fall back to defaults: %+v", rc.Weights)
	}
	if rc.Thresholds.Critical != 20 {
		t.Errorf("overridden threshold lost: %d", rc.Thresholds.Critical)
	}
	if rc.Thresholds.High != 10 || rc.Thresholds.Medium != 5 {
		t.Errorf("unset thresholds should fall back to defaults: %+v", rc.Thresholds)
	}
	if rc.Confidence.ExternalWeight != 0.5 {
		t.Errorf("overridden confidence weight lost: %v", rc.Confidence.ExternalWeight)
	}
	if rc.Confidence.ScoreWeight != 0.7 || rc.Confidence.ScoreCeiling != 20 {
		t.Errorf("unset confidence knobs should fall back to defaults: %+v", rc.Confidence)
	}
	if rc.Context.HistoryWindow != 5 || rc.Context.EscalationMinHits != 2 || rc.Context.EscalationBonus != 4 {
		t.Errorf("unset context knobs should fall back to defaults: %+v", rc.Context)
	}
	if rc.SnapshotMaxChars != 500 {
		t.Errorf("unset snapshot limit should fall back to default: %d", rc.SnapshotMaxChars)
	}
}

func TestApplyRiskDefaultsZeroConfig(t *testing.T) {
	rc := RiskConfig{}
	applyRiskDefaults(&rc)
	if rc != DefaultRiskConfig() {
		t.Errorf("empty config should equal the stock configuration: %+v", rc)
	}
}
