// Package query provides pure text analysis for incoming questions:
// intent classification and synonym expansion.
package query

import (
	"strings"

	"github.com/kektech/cardbot/internal/models"
)

// Thresholds holds the tunable word-count limits used by the classifier.
// Historical deployments disagreed on the exact values, so they are
// configuration rather than constants.
type Thresholds struct {
	// ShortQuestionMaxWords: questions at or below this length that end in
	// "?" get QuestionFactBonus added to the fact score.
	ShortQuestionMaxWords int
	// TieBreakMaxWords: when fact and lore scores tie positive, queries at
	// or below this length break toward LORE, longer ones toward FACTS.
	TieBreakMaxWords int
	// ProperNounMaxWords: with allowUncertain and no phrase match, queries
	// at or below this length are treated as proper-noun lookups (LORE).
	ProperNounMaxWords int
	// QuestionFactBonus is the increment applied for short questions.
	QuestionFactBonus int
}

// DefaultThresholds returns the tuned classifier thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ShortQuestionMaxWords: 6,
		TieBreakMaxWords:      6,
		ProperNounMaxWords:    3,
		QuestionFactBonus:     1,
	}
}

// ClassifyOptions controls classification behavior per call.
type ClassifyOptions struct {
	// AllowUncertain lets the classifier return IntentUncertain for long
	// queries that match neither phrase list. When false, every no-match
	// case defaults to LORE.
	AllowUncertain bool
}

// Classifier is a deterministic phrase-list intent classifier.
type Classifier struct {
	thresholds  Thresholds
	factPhrases []string
	lorePhrases []string
	fillers     []string
}

var factPhrases = []string{
	"what is",
	"what are",
	"how do",
	"how much",
	"how many",
	"when is",
	"where do",
	"rules",
	"rule",
	"fee",
	"cost",
	"price",
	"supply",
	"issuance",
	"deadline",
	"requirements",
	"submission",
	"submit",
}

var lorePhrases = []string{
	"tell me about",
	"who created",
	"who made",
	"history of",
	"story of",
	"story behind",
	"lore",
	"origin",
	"why did",
	"famous",
	"legendary",
}

// conversational filler that signals small talk rather than a lookup.
var fillerPhrases = []string{
	"lol",
	"haha",
	"thanks",
	"thank you",
	"gm",
	"good morning",
	"hello",
	"hey",
	"ok",
	"okay",
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	if t.ShortQuestionMaxWords == 0 {
		t = DefaultThresholds()
	}
	return &Classifier{
		thresholds:  t,
		factPhrases: factPhrases,
		lorePhrases: lorePhrases,
		fillers:     fillerPhrases,
	}
}

// Classify determines the intent of text. It is pure: the same input always
// yields the same output. Empty or whitespace-only text classifies as LORE.
func (c *Classifier) Classify(text string, opts ClassifyOptions) models.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return models.IntentLore
	}
	normalized = strings.Join(strings.Fields(normalized), " ")
	wordCount := len(strings.Fields(normalized))

	// Submission-rule questions are always factual, whatever else matches.
	if strings.Contains(normalized, "submission") && strings.Contains(normalized, "rule") {
		return models.IntentFacts
	}

	factScore := countPhraseMatches(normalized, c.factPhrases)
	loreScore := countPhraseMatches(normalized, c.lorePhrases)

	if strings.HasSuffix(normalized, "?") && wordCount <= c.thresholds.ShortQuestionMaxWords {
		factScore += c.thresholds.QuestionFactBonus
	}

	switch {
	case factScore > loreScore:
		return models.IntentFacts
	case loreScore > factScore:
		return models.IntentLore
	case factScore > 0:
		// Tied and positive: short queries read as lore lookups, long ones
		// as fact questions.
		if wordCount <= c.thresholds.TieBreakMaxWords {
			return models.IntentLore
		}
		return models.IntentFacts
	}

	// No phrase matched either list.
	if opts.AllowUncertain && !containsAny(normalized, c.fillers) {
		if wordCount <= c.thresholds.ProperNounMaxWords {
			// Likely a bare proper noun such as a card or artist name.
			return models.IntentLore
		}
		return models.IntentUncertain
	}
	return models.IntentLore
}

func countPhraseMatches(text string, phrases []string) int {
	count := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			count++
		}
	}
	return count
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
