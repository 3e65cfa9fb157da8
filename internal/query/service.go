// Package query exposes read-side views over persisted mood history.
package query

import (
	"context"
	"fmt"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
)

// Service answers history queries from a HistoryStore.
type Service struct {
	store storage.HistoryStore
}

// NewService creates a query service backed by the given store.
func NewService(store storage.HistoryStore) *Service {
	return &Service{store: store}
}

// MarketHistory returns the market-wide daily mood averages for the last
// days dates, oldest first. Returns storage.ErrNotFound when no history
// has been recorded at all.
func (s *Service) MarketHistory(ctx context.Context, days int) ([]domain.HistoryPoint, error) {
	entries, err := s.store.MarketHistory(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load market history: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no market history recorded: %w", storage.ErrNotFound)
	}
	return toPoints(entries), nil
}

// SymbolHistory returns the daily mood history for one symbol, oldest
// first. Returns storage.ErrNotFound for symbols with no recorded rows.
func (s *Service) SymbolHistory(ctx context.Context, symbol string, days int) ([]domain.HistoryPoint, error) {
	entries, err := s.store.SymbolHistory(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", symbol, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no history for symbol %s: %w", symbol, storage.ErrNotFound)
	}
	return toPoints(entries), nil
}

func toPoints(entries []*domain.HistoryEntry) []domain.HistoryPoint {
	points := make([]domain.HistoryPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, domain.HistoryPoint{
			Date:      e.Date.Format(domain.DateLayout),
			MoodScore: e.MoodScore,
		})
	}
	return points
}
