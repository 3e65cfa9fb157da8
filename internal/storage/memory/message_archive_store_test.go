package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
)

func TestMessageArchiveStore_InsertAndQuery(t *testing.T) {
	store := NewMessageArchiveStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	messages := []*domain.ScoredMessage{
		{Symbol: "CE", Text: "CE posts record profit", Timestamp: base.Add(2 * time.Hour), WeightedScore: 0.4},
		{Symbol: "CE", Text: "CE expands into Europe", Timestamp: base, WeightedScore: 0.2},
		{Symbol: "LHX", Text: "LHX faces recall", Timestamp: base, WeightedScore: -0.3},
	}

	if err := store.InsertBulk(ctx, messages); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.SymbolMessages(ctx, "CE", base.Add(-time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("SymbolMessages failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(result))
	}
	// Ordered by timestamp ASC.
	if result[0].Text != "CE expands into Europe" {
		t.Errorf("Expected earliest message first, got %q", result[0].Text)
	}
}

func TestMessageArchiveStore_TimeWindow(t *testing.T) {
	store := NewMessageArchiveStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store.InsertBulk(ctx, []*domain.ScoredMessage{
		{Symbol: "CE", Text: "inside", Timestamp: base},
		{Symbol: "CE", Text: "outside", Timestamp: base.Add(48 * time.Hour)},
	})

	result, _ := store.SymbolMessages(ctx, "CE", base.Add(-time.Hour), base.Add(time.Hour))
	if len(result) != 1 || result[0].Text != "inside" {
		t.Errorf("Window filter failed: got %d messages", len(result))
	}
}

func TestMessageArchiveStore_InvalidInput(t *testing.T) {
	store := NewMessageArchiveStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ScoredMessage{{Text: "no symbol"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
