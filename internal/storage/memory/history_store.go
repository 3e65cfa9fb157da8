package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
)

// HistoryStore is an in-memory implementation of storage.HistoryStore.
type HistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.HistoryEntry // keyed by symbol|date
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data: make(map[string]*domain.HistoryEntry),
	}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// historyKey generates a unique key for a history entry.
func historyKey(symbol string, date time.Time) string {
	return symbol + "|" + domain.Day(date).Format(domain.DateLayout)
}

// Upsert inserts or replaces the entry for (symbol, date). Last write wins.
func (s *HistoryStore) Upsert(_ context.Context, entry *domain.HistoryEntry) error {
	if entry == nil || entry.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *entry
	copy.Date = domain.Day(entry.Date)
	s.data[historyKey(entry.Symbol, entry.Date)] = &copy
	return nil
}

// UpsertBulk upserts multiple entries. All-or-nothing: validates the whole
// batch before writing.
func (s *HistoryStore) UpsertBulk(_ context.Context, entries []*domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		if entry == nil || entry.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		copy := *entry
		copy.Date = domain.Day(entry.Date)
		s.data[historyKey(entry.Symbol, entry.Date)] = &copy
	}
	return nil
}

// SymbolHistory returns the `days` most recent entries for a symbol,
// ordered by date ASC.
func (s *HistoryStore) SymbolHistory(_ context.Context, symbol string, days int) ([]*domain.HistoryEntry, error) {
	if symbol == "" || days < 1 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HistoryEntry
	for _, entry := range s.data {
		if entry.Symbol == symbol {
			copy := *entry
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return lastN(result, days), nil
}

// MarketHistory returns the `days` most recent market-level entries, each
// the per-date average across all symbols, ordered by date ASC.
func (s *HistoryStore) MarketHistory(_ context.Context, days int) ([]*domain.HistoryEntry, error) {
	if days < 1 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, entry := range s.data {
		sums[entry.Date] += entry.MoodScore
		counts[entry.Date]++
	}

	result := make([]*domain.HistoryEntry, 0, len(sums))
	for date, sum := range sums {
		result = append(result, &domain.HistoryEntry{
			Symbol:    "",
			Date:      date,
			MoodScore: sum / float64(counts[date]),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return lastN(result, days), nil
}

// Delete removes the entry for (symbol, date).
func (s *HistoryStore) Delete(_ context.Context, symbol string, date time.Time) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := historyKey(symbol, date)
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// lastN keeps the trailing n elements of an ascending slice.
func lastN(entries []*domain.HistoryEntry, n int) []*domain.HistoryEntry {
	if n > 0 && len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}
