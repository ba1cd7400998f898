package services

import (
	"strings"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
)

// EscalatingPatternCue is the cue emitted when sustained risk language is
// detected across recent conversation history.
const EscalatingPatternCue = "escalating pattern detected in conversation history"

// ConversationContext carries the prior messages of the conversation being
// analyzed, ordered oldest-first (most recent last).
type ConversationContext struct {
	UserID         string
	ConversationID string
	Messages       []models.ChatMessage
}

// ContextAnalyzer inspects the current text for contextual risk cues and the
// recent history for escalation over time. It never lowers a score; its output
// is purely additive to the pattern score.
type ContextAnalyzer struct {
	lexicon *Lexicon
	scorer  *PatternScorer
	cfg     config.ContextConfig
}

// NewContextAnalyzer creates a context analyzer sharing the scorer used for
// history re-scoring.
func NewContextAnalyzer(w config.RiskWeights, cfg config.ContextConfig, scorer *PatternScorer) *ContextAnalyzer {
	return &ContextAnalyzer{
		lexicon: NewContextLexicon(w),
		scorer:  scorer,
		cfg:     cfg,
	}
}

// Analyze returns the contextual score and cues for the text within its
// conversation. A nil context skips the history heuristic.
func (a *ContextAnalyzer) Analyze(text string, convCtx *ConversationContext) (int, []models.RiskIndicator) {
	score := 0
	var cues []models.RiskIndicator

	if strings.TrimSpace(text) != "" {
		for i := range a.lexicon.Categories {
			cat := &a.lexicon.Categories[i]
			for _, phrase := range cat.FindAll(text) {
				score += cat.Weight
				cues = append(cues, models.RiskIndicator{
					Category: cat.Name,
					Matched:  phrase,
				})
			}
		}
	}

	if convCtx != nil {
		if bonus, cue := a.escalationOverTime(convCtx.Messages); bonus > 0 {
			score += bonus
			cues = append(cues, cue)
		}
	}

	return score, cues
}

// escalationOverTime re-scores the most recent user-authored messages in the
// history window. Sustained risk language (at least EscalationMinHits messages
// scoring above zero) earns a single fixed bonus: repeated mentions across a
// conversation outweigh one isolated mention.
func (a *ContextAnalyzer) escalationOverTime(history []models.ChatMessage) (int, models.RiskIndicator) {
	window := a.cfg.HistoryWindow
	if window <= 0 || len(history) == 0 {
		return 0, models.RiskIndicator{}
	}

	recent := history
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	hits := 0
	for _, msg := range recent {
		if msg.Role != models.RoleUser {
			continue
		}
		if s, _ := a.scorer.Score(msg.Content); s > 0 {
			hits++
		}
	}

	if hits < a.cfg.EscalationMinHits {
		return 0, models.RiskIndicator{}
	}

	return a.cfg.EscalationBonus, models.RiskIndicator{
		Category: models.CategoryEscalation,
		Matched:  EscalatingPatternCue,
	}
}
