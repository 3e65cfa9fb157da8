package clickhouse

import (
	"context"
	"fmt"
	"time"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
)

// MessageArchiveStore implements storage.MessageArchiveStore using ClickHouse.
// Append-only analytic sink; every aggregation run lands its scored messages
// here for offline analysis.
type MessageArchiveStore struct {
	conn *Conn
}

// NewMessageArchiveStore creates a new MessageArchiveStore.
func NewMessageArchiveStore(conn *Conn) *MessageArchiveStore {
	return &MessageArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MessageArchiveStore = (*MessageArchiveStore)(nil)

// InsertBulk archives a batch of scored messages.
func (s *MessageArchiveStore) InsertBulk(ctx context.Context, messages []*domain.ScoredMessage) error {
	if len(messages) == 0 {
		return nil
	}

	for _, m := range messages {
		if m == nil || m.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO scored_messages (
			symbol, text, author, timestamp, raw_score, label, weighted_score, intensity
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, m := range messages {
		err = batch.Append(
			m.Symbol, m.Text, m.Author, m.Timestamp.UTC(),
			m.RawScore, string(m.Label), m.WeightedScore, string(m.Intensity),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// SymbolMessages retrieves archived messages for a symbol within
// [start, end], ordered by timestamp ASC.
func (s *MessageArchiveStore) SymbolMessages(ctx context.Context, symbol string, start, end time.Time) ([]*domain.ScoredMessage, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT symbol, text, author, timestamp, raw_score, label, weighted_score, intensity
		FROM scored_messages
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("get symbol messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.ScoredMessage
	for rows.Next() {
		var m domain.ScoredMessage
		var label, intensity string
		err := rows.Scan(
			&m.Symbol, &m.Text, &m.Author, &m.Timestamp,
			&m.RawScore, &label, &m.WeightedScore, &intensity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan scored message: %w", err)
		}
		m.Label = domain.Label(label)
		m.Intensity = domain.Intensity(intensity)
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scored messages: %w", err)
	}

	return messages, nil
}
