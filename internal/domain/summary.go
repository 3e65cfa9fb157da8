package domain

import "time"

// SymbolSummary aggregates all scored messages for one symbol in one run.
// Headline is only set on "rest" entries (first message text, a convenience
// for list rendering).
type SymbolSummary struct {
	Symbol     string          `json:"symbol"`
	MoodScore  float64         `json:"mood_score"`  // mean of weighted scores, jittered, in [-1, 1]
	Confidence float64         `json:"confidence"`  // positive share of polarized messages, in [0, 1]
	Headline   string          `json:"headline,omitempty"`
	Messages   []ScoredMessage `json:"messages"`
}

// TopMoversSnapshot is the result of one aggregation run. TopPositive and
// TopNegative are always present for a non-empty pool (fallback synthesis
// guarantees it); rest lists carry at most five entries each.
type TopMoversSnapshot struct {
	MarketMood       float64          `json:"market_mood"`
	MarketConfidence float64          `json:"market_confidence"`
	TopPositive      *SymbolSummary   `json:"top_positive"`
	TopNegative      *SymbolSummary   `json:"top_negative"`
	RestPositive     []*SymbolSummary `json:"rest_positive"`
	RestNegative     []*SymbolSummary `json:"rest_negative"`
	ComputedAt       time.Time        `json:"computed_at"`
}
