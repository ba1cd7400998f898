package services

import (
	"regexp"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
)

// LexiconVersion identifies the phrase tables baked into this build. Bump it
// whenever the phrase lists change so stored assessments can be traced back to
// the lexicon that produced them.
const LexiconVersion = "2025.2"

// lexiconEntry is a single phrase with its precompiled matcher
type lexiconEntry struct {
	phrase  string
	matcher *regexp.Regexp
}

// LexiconCategory is one weighted group of phrases
type LexiconCategory struct {
	Name    models.IndicatorCategory
	Weight  int
	entries []lexiconEntry
}

// FindAll returns every phrase in the category present in the text, in
// declaration order. Matching is case-insensitive and word-boundary aware, so
// "rope" does not fire inside "Europe". Overlapping phrases each count; repeated
// or compounded language is genuine signal and is deliberately not deduplicated.
func (c *LexiconCategory) FindAll(text string) []string {
	var matched []string
	for _, e := range c.entries {
		if e.matcher.MatchString(text) {
			matched = append(matched, e.phrase)
		}
	}
	return matched
}

// Lexicon is a versioned, ordered set of weighted phrase categories. It is pure
// data: scorer and classifier code never change when the tables do.
type Lexicon struct {
	Version    string
	Categories []LexiconCategory
}

func newCategory(name models.IndicatorCategory, weight int, phrases ...string) LexiconCategory {
	entries := make([]lexiconEntry, 0, len(phrases))
	for _, p := range phrases {
		entries = append(entries, lexiconEntry{
			phrase:  p,
			matcher: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`),
		})
	}
	return LexiconCategory{Name: name, Weight: weight, entries: entries}
}

// NewPatternLexicon builds the primary crisis lexicon. Category order is the
// indicator scan order: direct threats first, emotional distress last.
func NewPatternLexicon(w config.RiskWeights) *Lexicon {
	return &Lexicon{
		Version: LexiconVersion,
		Categories: []LexiconCategory{
			newCategory(models.CategoryDirectThreat, w.DirectThreat,
				"i want to kill myself",
				"i am going to kill myself",
				"i plan to end my life",
				"i am going to commit suicide",
				"i have decided to die",
				"i will take my own life",
				"tonight is my last night",
				"i want to die",
				"better off dead",
				"i know how i will do it",
			),
			newCategory(models.CategoryMethodReference, w.MethodReference,
				"pills",
				"rope",
				"bridge",
				"overdose",
				"hanging",
				"jumping",
				"drowning",
				"cutting",
				"poison",
				"firearm",
			),
			newCategory(models.CategoryTemporalMarker, w.TemporalMarker,
				"tonight",
				"tomorrow",
				"this weekend",
				"when i get home",
				"in the morning",
				"very soon",
			),
			newCategory(models.CategoryIndirectIdeation, w.IndirectIdeation,
				"i can't go on anymore",
				"there's no point in living",
				"no point living",
				"everyone would be better without me",
				"i feel like giving up",
				"i don't see a way out",
				"i feel trapped",
				"nothing will ever get better",
				"i am a burden to everyone",
				"i just want the pain to stop",
			),
			newCategory(models.CategoryEmotionalDistress, w.EmotionalDistress,
				"hopeless",
				"worthless",
				"numb",
				"broken",
				"abandoned",
				"rejected",
				"useless",
				"sad",
				"anxious",
				"overwhelmed",
				"helpless",
				"lonely",
				"desperate",
			),
		},
	}
}

// NewContextLexicon builds the contextual-cue lexicon used by the history
// analyzer. Plan formation and means access carry more weight than the rest.
func NewContextLexicon(w config.RiskWeights) *Lexicon {
	return &Lexicon{
		Version: LexiconVersion,
		Categories: []LexiconCategory{
			newCategory(models.CategoryIsolation, w.Isolation,
				"no one cares",
				"all alone",
				"nobody understands",
				"no friends",
			),
			newCategory(models.CategoryPlanFormation, w.PlanFormation,
				"i have thought about",
				"i have been planning",
				"i know exactly how",
			),
			newCategory(models.CategoryMeansAccess, w.MeansAccess,
				"i have access to",
				"i can get",
				"i already have",
			),
			newCategory(models.CategoryTimeline, w.Timeline,
				"very soon",
				"tonight",
				"this week",
			),
			newCategory(models.CategoryFinality, w.Finality,
				"final decision",
				"made up my mind",
				"there's no going back",
				"this is it",
			),
		},
	}
}

// Baseline keyword tiers kept from the first-generation keyword matcher. The
// classifier uses a baseline hit only as an independent confidence signal; it
// never changes the tier on its own.
var baselineKeywords = newCategory("baseline", 0,
	"suicide",
	"kill myself",
	"ending my life",
	"end it all",
	"hurt myself",
	"self harm",
	"self-harm",
	"suicidal",
	"want to die",
)

// BaselineFlag reports whether the legacy keyword list fires on the text
func BaselineFlag(text string) bool {
	return len(baselineKeywords.FindAll(text)) > 0
}
