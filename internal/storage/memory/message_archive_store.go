package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
)

// MessageArchiveStore is an in-memory implementation of
// storage.MessageArchiveStore.
type MessageArchiveStore struct {
	mu   sync.RWMutex
	data []*domain.ScoredMessage
}

// NewMessageArchiveStore creates a new in-memory message archive.
func NewMessageArchiveStore() *MessageArchiveStore {
	return &MessageArchiveStore{}
}

// Compile-time interface check.
var _ storage.MessageArchiveStore = (*MessageArchiveStore)(nil)

// InsertBulk archives a batch of scored messages.
func (s *MessageArchiveStore) InsertBulk(_ context.Context, messages []*domain.ScoredMessage) error {
	if len(messages) == 0 {
		return nil
	}

	for _, m := range messages {
		if m == nil || m.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range messages {
		copy := *m
		s.data = append(s.data, &copy)
	}
	return nil
}

// SymbolMessages retrieves archived messages for a symbol within
// [start, end], ordered by timestamp ASC.
func (s *MessageArchiveStore) SymbolMessages(_ context.Context, symbol string, start, end time.Time) ([]*domain.ScoredMessage, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScoredMessage
	for _, m := range s.data {
		if m.Symbol != symbol {
			continue
		}
		if m.Timestamp.Before(start) || m.Timestamp.After(end) {
			continue
		}
		copy := *m
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}
