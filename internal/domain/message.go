package domain

import "time"

// Label is the three-way sentiment classification of a headline.
type Label string

// Sentiment labels. Values match the wire format consumed by the dashboard.
const (
	LabelPositive Label = "Positive"
	LabelNeutral  Label = "Neutral"
	LabelNegative Label = "Negative"
)

// Intensity is the coarse tier derived from a weighted score.
type Intensity string

// Intensity buckets.
const (
	IntensityStrongPos Intensity = "Strong +"
	IntensityWeakPos   Intensity = "Weak +"
	IntensityNeutral   Intensity = "Neutral"
	IntensityWeakNeg   Intensity = "Weak -"
	IntensityStrongNeg Intensity = "Strong -"
)

// Headline is one raw record from the headline pool. Author and Timestamp
// are optional; the aggregator synthesizes them when absent.
type Headline struct {
	Symbol    string    `json:"symbol"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ScoredMessage is a headline after keyword scoring and weighting.
// Ephemeral: created per aggregation run, archived but never updated.
type ScoredMessage struct {
	Text          string    `json:"text"`
	Symbol        string    `json:"symbol"`
	Author        string    `json:"author"`
	Timestamp     time.Time `json:"timestamp"`
	RawScore      float64   `json:"orig_score"` // keyword score before weighting, in [-1, 1]
	Label         Label     `json:"label"`
	WeightedScore float64   `json:"score"` // credibility- and recency-weighted, in [-1, 1]
	Intensity     Intensity `json:"intensity"`
}
