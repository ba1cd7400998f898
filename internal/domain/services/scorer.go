package services

import (
	"strings"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
)

// PatternScorer scans text against the crisis lexicon and produces an additive
// score plus the matched indicators. It is a pure function of its input: no
// I/O, no randomness, so re-scoring the same text always yields the same result.
type PatternScorer struct {
	lexicon *Lexicon
}

// NewPatternScorer creates a pattern scorer over the given weights
func NewPatternScorer(w config.RiskWeights) *PatternScorer {
	return &PatternScorer{lexicon: NewPatternLexicon(w)}
}

// Score scans every lexicon category against the text. All categories are
// scanned (no early exit); each match adds the category weight. Indicator order
// follows lexicon declaration order, not position in the input. Empty or
// whitespace-only input scores zero with no indicators.
func (s *PatternScorer) Score(text string) (int, []models.RiskIndicator) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	score := 0
	var indicators []models.RiskIndicator
	for i := range s.lexicon.Categories {
		cat := &s.lexicon.Categories[i]
		for _, phrase := range cat.FindAll(text) {
			score += cat.Weight
			indicators = append(indicators, models.RiskIndicator{
				Category: cat.Name,
				Matched:  phrase,
			})
		}
	}
	return score, indicators
}
