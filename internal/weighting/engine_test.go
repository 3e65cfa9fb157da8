package weighting

import (
	"testing"
	"time"

	"market-mood-lab/internal/domain"
)

var now = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func TestWeigh_CredibilityMultiplier(t *testing.T) {
	e := NewEngine(nil, 0)

	// Zero elapsed time: decay factor is 1, only credibility applies.
	score, _ := e.Weigh(0.4, "CEO tweet", now, now)
	if score != 0.6000000000000001 && score != 0.6 {
		t.Errorf("Expected 0.6, got %v", score)
	}

	score, _ = e.Weigh(0.4, "Forum user", now, now)
	if score > 0.29 || score < 0.27 {
		t.Errorf("Expected ~0.28, got %v", score)
	}
}

func TestWeigh_UnknownSourceWeighsOne(t *testing.T) {
	e := NewEngine(nil, 0)

	score, _ := e.Weigh(0.4, "Anonymous blogger", now, now)
	if score != 0.4 {
		t.Errorf("Expected 0.4 for unknown source, got %v", score)
	}
}

func TestWeigh_HalfLifeDecay(t *testing.T) {
	e := NewEngine(nil, 0)

	// One half life: score halves.
	score, _ := e.Weigh(0.8, "Analyst", now.Add(-24*time.Hour), now)
	if score != 0.4 {
		t.Errorf("Expected 0.4 after one half life, got %v", score)
	}

	// Two half lives: quarters.
	score, _ = e.Weigh(0.8, "Analyst", now.Add(-48*time.Hour), now)
	if score != 0.2 {
		t.Errorf("Expected 0.2 after two half lives, got %v", score)
	}
}

func TestWeigh_DecayMonotone(t *testing.T) {
	e := NewEngine(nil, 0)

	prev := 2.0
	for hours := 0; hours <= 240; hours += 12 {
		score, _ := e.Weigh(0.9, "Analyst", now.Add(-time.Duration(hours)*time.Hour), now)
		if score >= prev {
			t.Fatalf("Decay not monotone at %dh: %v >= %v", hours, score, prev)
		}
		if score < 0 {
			t.Fatalf("Decay inverted sign at %dh: %v", hours, score)
		}
		prev = score
	}
}

func TestWeigh_NegativeScoreKeepsSign(t *testing.T) {
	e := NewEngine(nil, 0)

	score, _ := e.Weigh(-0.6, "Newswire", now.Add(-100*time.Hour), now)
	if score >= 0 {
		t.Errorf("Expected negative score, got %v", score)
	}
	if score < -1 {
		t.Errorf("Score out of range: %v", score)
	}
}

func TestWeigh_FutureTimestampNoAmplification(t *testing.T) {
	e := NewEngine(nil, 0)

	// Future timestamps must not amplify the score.
	score, _ := e.Weigh(0.4, "Analyst", now.Add(6*time.Hour), now)
	if score != 0.4 {
		t.Errorf("Expected 0.4 for future timestamp, got %v", score)
	}
}

func TestWeigh_Clamp(t *testing.T) {
	e := NewEngine(map[string]float64{"Hype machine": 3.0}, 0)

	score, intensity := e.Weigh(0.9, "Hype machine", now, now)
	if score != 1.0 {
		t.Errorf("Expected clamp to 1.0, got %v", score)
	}
	if intensity != domain.IntensityStrongPos {
		t.Errorf("Expected Strong +, got %s", intensity)
	}

	score, intensity = e.Weigh(-0.9, "Hype machine", now, now)
	if score != -1.0 {
		t.Errorf("Expected clamp to -1.0, got %v", score)
	}
	if intensity != domain.IntensityStrongNeg {
		t.Errorf("Expected Strong -, got %s", intensity)
	}
}

func TestWeigh_OutputNeverExceedsInputUnderUnitWeights(t *testing.T) {
	e := NewEngine(map[string]float64{"Analyst": 1.0}, 0)

	for _, raw := range []float64{-1, -0.5, -0.1, 0, 0.1, 0.5, 1} {
		for hours := 0; hours <= 96; hours += 8 {
			score, _ := e.Weigh(raw, "Analyst", now.Add(-time.Duration(hours)*time.Hour), now)
			if abs(score) > abs(raw) {
				t.Errorf("raw=%v elapsed=%dh: |%v| > |%v|", raw, hours, score, raw)
			}
		}
	}
}

func TestBucket(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Intensity
	}{
		{0.9, domain.IntensityStrongPos},
		{0.8, domain.IntensityStrongPos},
		{0.5, domain.IntensityWeakPos},
		{0.2, domain.IntensityWeakPos},
		{0.1, domain.IntensityNeutral},
		{0, domain.IntensityNeutral},
		{-0.1, domain.IntensityNeutral},
		{-0.2, domain.IntensityWeakNeg},
		{-0.5, domain.IntensityWeakNeg},
		{-0.8, domain.IntensityStrongNeg},
		{-1, domain.IntensityStrongNeg},
	}

	for _, c := range cases {
		if got := Bucket(c.score); got != c.want {
			t.Errorf("Bucket(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
