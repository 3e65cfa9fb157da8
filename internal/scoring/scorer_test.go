package scoring

import (
	"strings"
	"testing"

	"market-mood-lab/internal/domain"
)

func TestScore_NoKeywords(t *testing.T) {
	s := NewScorer(nil, nil)

	res := s.Score("LHX announces new board member")
	if res.Score != 0 {
		t.Errorf("Expected score 0, got %f", res.Score)
	}
	if res.Label != domain.LabelNeutral {
		t.Errorf("Expected Neutral, got %s", res.Label)
	}
}

func TestScore_SinglePositiveKeywordStaysNeutral(t *testing.T) {
	s := NewScorer(nil, nil)

	// One positive keyword gives exactly +0.2; the Positive threshold is
	// strict, so this must remain Neutral.
	res := s.Score("CE posts record quarterly revenue")
	if res.Score != 0.2 {
		t.Errorf("Expected score 0.2, got %f", res.Score)
	}
	if res.Label != domain.LabelNeutral {
		t.Errorf("Expected Neutral at the +0.2 boundary, got %s", res.Label)
	}
}

func TestScore_SingleNegativeKeywordStaysNeutral(t *testing.T) {
	s := NewScorer(nil, nil)

	res := s.Score("LHX hit with lawsuit over patents")
	if res.Score != -0.2 {
		t.Errorf("Expected score -0.2, got %f", res.Score)
	}
	if res.Label != domain.LabelNeutral {
		t.Errorf("Expected Neutral at the -0.2 boundary, got %s", res.Label)
	}
}

func TestScore_MultipleKeywords(t *testing.T) {
	s := NewScorer(nil, nil)

	res := s.Score("Record profit growth after breakthrough approval")
	if res.Score != 1.0 {
		t.Errorf("Expected clamped score 1.0, got %f", res.Score)
	}
	if res.Label != domain.LabelPositive {
		t.Errorf("Expected Positive, got %s", res.Label)
	}

	res = s.Score("Slump deepens: layoffs, lawsuit and a regulatory fine")
	if res.Score != -0.8 {
		t.Errorf("Expected score -0.8, got %f", res.Score)
	}
	if res.Label != domain.LabelNegative {
		t.Errorf("Expected Negative, got %s", res.Label)
	}
}

func TestScore_DistinctKeywordCountedOnce(t *testing.T) {
	s := NewScorer(nil, nil)

	res := s.Score("profit, profit and more profit")
	if res.Score != 0.2 {
		t.Errorf("Repeated keyword must count once: got %f, want 0.2", res.Score)
	}
}

func TestScore_MixedKeywordsCancel(t *testing.T) {
	s := NewScorer(nil, nil)

	res := s.Score("strong growth despite loss and layoffs")
	if res.Score != 0 {
		t.Errorf("Expected score 0, got %f", res.Score)
	}
	if res.Label != domain.LabelNeutral {
		t.Errorf("Expected Neutral, got %s", res.Label)
	}
}

func TestScore_ExtremeOverrides(t *testing.T) {
	s := NewScorer(nil, nil)

	res := s.Score("AAPL soars 100% on record guidance")
	if res.Score != 1.0 {
		t.Errorf("Extreme marker must force score 1.0, got %f", res.Score)
	}
	if res.Label != domain.LabelPositive {
		t.Errorf("Expected Positive, got %s", res.Label)
	}

	res = s.Score("TSLA crashes 100% amid scandal")
	if res.Score != -1.0 {
		t.Errorf("Extreme marker must force score -1.0, got %f", res.Score)
	}
	if res.Label != domain.LabelNegative {
		t.Errorf("Expected Negative, got %s", res.Label)
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	s := NewScorer(nil, nil)

	if got := s.Score("RECORD BREAKTHROUGH").Score; got != 0.4 {
		t.Errorf("Expected 0.4, got %f", got)
	}
}

func TestScore_CustomKeywords(t *testing.T) {
	s := NewScorer([]string{"moon"}, []string{"rug"})

	if got := s.Score("token to the moon").Score; got != 0.2 {
		t.Errorf("Expected 0.2 from custom positive keyword, got %f", got)
	}
	if got := s.Score("total rug pull").Score; got != -0.2 {
		t.Errorf("Expected -0.2 from custom negative keyword, got %f", got)
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	s := NewScorer(nil, nil)

	// Pack every keyword into one text; result must stay clamped.
	text := strings.Join(append(DefaultPositiveKeywords(), DefaultNegativeKeywords()...), " ")
	res := s.Score(text)
	if res.Score < -1 || res.Score > 1 {
		t.Errorf("Score out of range: %f", res.Score)
	}

	// Label must be consistent with the threshold rule for any text.
	for _, input := range []string{"", text, "profit", "loss", "soars 100%", "crashes 100%"} {
		r := s.Score(input)
		switch {
		case r.Score > 0.2 && r.Label != domain.LabelPositive:
			t.Errorf("%q: score %f should label Positive, got %s", input, r.Score, r.Label)
		case r.Score < -0.2 && r.Label != domain.LabelNegative:
			t.Errorf("%q: score %f should label Negative, got %s", input, r.Score, r.Label)
		case r.Score >= -0.2 && r.Score <= 0.2 && r.Label != domain.LabelNeutral:
			t.Errorf("%q: score %f should label Neutral, got %s", input, r.Score, r.Label)
		}
	}
}

func TestScoreAll_PreservesOrder(t *testing.T) {
	s := NewScorer(nil, nil)

	texts := []string{"record profit surge", "plain news", "lawsuit and layoffs and recall"}
	results := s.ScoreAll(texts)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Text != texts[i] {
			t.Errorf("Result %d text mismatch: got %q, want %q", i, r.Text, texts[i])
		}
	}
	if results[0].Label != domain.LabelPositive {
		t.Errorf("Expected first result Positive, got %s", results[0].Label)
	}
	if results[2].Label != domain.LabelNegative {
		t.Errorf("Expected last result Negative, got %s", results[2].Label)
	}
}
