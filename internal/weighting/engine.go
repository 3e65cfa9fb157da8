// Package weighting applies source credibility and recency decay to raw
// sentiment scores and buckets the result into an intensity tier.
package weighting

import (
	"math"
	"time"

	"market-mood-lab/internal/domain"
)

// DefaultHalfLifeHours is the recency-decay half life.
const DefaultHalfLifeHours = 24.0

// DefaultCredibility returns the built-in per-source credibility multipliers.
// Unknown sources weigh 1.0.
func DefaultCredibility() map[string]float64 {
	return map[string]float64{
		"Analyst":     1.0,
		"CEO tweet":   1.5,
		"Newswire":    1.2,
		"Forum user":  0.7,
		"Insider tip": 0.8,
	}
}

// Engine weights raw scores. Deterministic given inputs, no side effects.
type Engine struct {
	credibility   map[string]float64
	halfLifeHours float64
}

// NewEngine creates an engine. A nil credibility table falls back to
// DefaultCredibility; a non-positive half life falls back to
// DefaultHalfLifeHours.
func NewEngine(credibility map[string]float64, halfLifeHours float64) *Engine {
	if credibility == nil {
		credibility = DefaultCredibility()
	}
	if halfLifeHours <= 0 {
		halfLifeHours = DefaultHalfLifeHours
	}
	return &Engine{credibility: credibility, halfLifeHours: halfLifeHours}
}

// Weigh multiplies rawScore by the source credibility, applies exponential
// recency decay between timestamp and now, clamps to [-1, 1], and buckets
// the result. Decay never inverts sign and never goes negative; timestamps
// in the future decay as if current.
func (e *Engine) Weigh(rawScore float64, source string, timestamp, now time.Time) (float64, domain.Intensity) {
	weight, ok := e.credibility[source]
	if !ok {
		weight = 1.0
	}
	score := rawScore * weight

	elapsedHours := now.Sub(timestamp).Hours()
	if elapsedHours < 0 {
		elapsedHours = 0
	}
	score *= math.Pow(0.5, elapsedHours/e.halfLifeHours)

	score = clamp(score)
	return score, Bucket(score)
}

// Bucket maps a weighted score to its intensity tier.
func Bucket(score float64) domain.Intensity {
	switch {
	case score >= 0.8:
		return domain.IntensityStrongPos
	case score >= 0.2:
		return domain.IntensityWeakPos
	case score <= -0.8:
		return domain.IntensityStrongNeg
	case score <= -0.2:
		return domain.IntensityWeakNeg
	default:
		return domain.IntensityNeutral
	}
}

func clamp(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
