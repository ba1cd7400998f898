package models

// RiskLevel is the discrete severity tier produced by classification
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// SeverityRank orders risk levels for sorting; higher is more severe
func (r RiskLevel) SeverityRank() int {
	switch r {
	case RiskLevelCritical:
		return 4
	case RiskLevelHigh:
		return 3
	case RiskLevelMedium:
		return 2
	case RiskLevelLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the value is a known risk level
func (r RiskLevel) Valid() bool {
	return r.SeverityRank() > 0
}

// RecommendedAction is the action derived from a risk tier
type RecommendedAction string

const (
	ActionNone                   RecommendedAction = "no_action"
	ActionMonitorAndReview       RecommendedAction = "monitor_and_review"
	ActionEscalateToProfessional RecommendedAction = "escalate_to_professional"
	ActionImmediateEscalation    RecommendedAction = "immediate_escalation"
)

// IndicatorCategory labels the lexicon category an indicator matched
type IndicatorCategory string

const (
	CategoryDirectThreat      IndicatorCategory = "direct_threat"
	CategoryMethodReference   IndicatorCategory = "method_reference"
	CategoryTemporalMarker    IndicatorCategory = "temporal_marker"
	CategoryIndirectIdeation  IndicatorCategory = "indirect_ideation"
	CategoryEmotionalDistress IndicatorCategory = "emotional_distress"

	CategoryIsolation     IndicatorCategory = "isolation"
	CategoryPlanFormation IndicatorCategory = "plan_formation"
	CategoryMeansAccess   IndicatorCategory = "means_access"
	CategoryTimeline      IndicatorCategory = "timeline"
	CategoryFinality      IndicatorCategory = "finality"

	// CategoryEscalation marks the sustained-risk-over-history cue
	CategoryEscalation IndicatorCategory = "escalation"
)

// RiskIndicator is a single matched phrase with its category.
// Order within a slice is scan order and is preserved end to end.
type RiskIndicator struct {
	Category IndicatorCategory `json:"category"`
	Matched  string            `json:"matched"`
}

// RiskAssessment is the ephemeral result of classifying one piece of text.
// It is computed fresh per message, never mutated, and only derived records
// (flagged content, admin alerts) are persisted.
type RiskAssessment struct {
	RiskLevel         RiskLevel         `json:"risk_level"`
	Score             int               `json:"score"`
	PatternScore      int               `json:"pattern_score"`
	ContextScore      int               `json:"context_score"`
	Confidence        float64           `json:"confidence"`
	MatchedIndicators []RiskIndicator   `json:"matched_indicators,omitempty"`
	ContextualCues    []RiskIndicator   `json:"contextual_cues,omitempty"`
	ExternalPositive  *bool             `json:"external_positive,omitempty"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
}

// Flagged reports whether the assessment warrants a flagged-content record
func (a *RiskAssessment) Flagged() bool {
	return a.RiskLevel != RiskLevelLow
}
