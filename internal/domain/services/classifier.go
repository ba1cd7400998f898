package services

import (
	"context"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// RiskClassifier combines pattern and contextual scores (and the optional
// external signal) into a discrete risk tier with a confidence value.
type RiskClassifier struct {
	scorer   *PatternScorer
	context  *ContextAnalyzer
	external ExternalClassifier
	cfg      config.RiskConfig
	logger   *logger.Logger
}

// NewRiskClassifier creates a classifier. Pass the disabled external
// classifier variant when no external backend is configured.
func NewRiskClassifier(cfg config.RiskConfig, external ExternalClassifier, log *logger.Logger) *RiskClassifier {
	scorer := NewPatternScorer(cfg.Weights)
	return &RiskClassifier{
		scorer:   scorer,
		context:  NewContextAnalyzer(cfg.Weights, cfg.Context, scorer),
		external: external,
		cfg:      cfg,
		logger:   log.WithComponent("risk-classifier"),
	}
}

// Classify assesses one piece of text. Classification is total over all string
// inputs: empty or whitespace-only text yields a low-tier assessment, never an
// error. The external classifier call is best-effort; on any failure the signal
// is treated as absent and classification proceeds with lexicon-only results.
func (c *RiskClassifier) Classify(ctx context.Context, text string, convCtx *ConversationContext) *models.RiskAssessment {
	patternScore, indicators := c.scorer.Score(text)
	contextScore, cues := c.context.Analyze(text, convCtx)
	totalScore := patternScore + contextScore

	var externalPositive *bool
	if c.external.Enabled() {
		var conversationID, userID string
		if convCtx != nil {
			conversationID = convCtx.ConversationID
			userID = convCtx.UserID
		}
		positive, err := c.external.Classify(ctx, text, conversationID, userID)
		if err != nil {
			c.logger.Warn().Err(err).Msg("external classifier unavailable, falling back to lexicon-only analysis")
		} else {
			externalPositive = &positive
		}
	}

	riskLevel := c.determineRiskLevel(totalScore, externalPositive != nil && *externalPositive)

	assessment := &models.RiskAssessment{
		RiskLevel:         riskLevel,
		Score:             totalScore,
		PatternScore:      patternScore,
		ContextScore:      contextScore,
		Confidence:        c.confidence(totalScore, externalPositive, BaselineFlag(text)),
		MatchedIndicators: indicators,
		ContextualCues:    cues,
		ExternalPositive:  externalPositive,
		RecommendedAction: RecommendedActionFor(riskLevel),
	}

	return assessment
}

// determineRiskLevel applies the tier thresholds; a positive external signal
// forces critical regardless of score.
func (c *RiskClassifier) determineRiskLevel(totalScore int, externalPositive bool) models.RiskLevel {
	t := c.cfg.Thresholds
	switch {
	case totalScore >= t.Critical || externalPositive:
		return models.RiskLevelCritical
	case totalScore >= t.High:
		return models.RiskLevelHigh
	case totalScore >= t.Medium:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// confidence blends the bounded score contribution with the independent
// evidence sources. It is monotonically non-decreasing in the total score and
// capped at 1.0.
func (c *RiskClassifier) confidence(totalScore int, externalPositive *bool, baselineFlag bool) float64 {
	cc := c.cfg.Confidence

	conf := cc.ScoreWeight * (float64(totalScore) / cc.ScoreCeiling)
	if externalPositive != nil && *externalPositive {
		conf += cc.ExternalWeight
	}
	if baselineFlag {
		conf += cc.BaselineWeight
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// RecommendedActionFor maps a risk tier to its action
func RecommendedActionFor(level models.RiskLevel) models.RecommendedAction {
	switch level {
	case models.RiskLevelCritical:
		return models.ActionImmediateEscalation
	case models.RiskLevelHigh:
		return models.ActionEscalateToProfessional
	case models.RiskLevelMedium:
		return models.ActionMonitorAndReview
	default:
		return models.ActionNone
	}
}
