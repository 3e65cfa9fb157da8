package storage

import (
	"context"
	"time"

	"market-mood-lab/internal/domain"
)

// HistoryStore provides access to the daily mood_history series.
// At most one entry exists per (symbol, date); Upsert replaces the score
// for an existing key instead of duplicating, atomically per key.
type HistoryStore interface {
	// Upsert inserts or replaces the entry for (entry.Symbol, entry.Date).
	// Last write wins.
	Upsert(ctx context.Context, entry *domain.HistoryEntry) error

	// UpsertBulk upserts multiple entries in one transaction.
	UpsertBulk(ctx context.Context, entries []*domain.HistoryEntry) error

	// SymbolHistory returns the `days` most recent entries for a symbol,
	// ordered by date ASC. Fewer than `days` entries exist: returns all
	// available. Unknown symbol: returns an empty slice, not an error.
	SymbolHistory(ctx context.Context, symbol string, days int) ([]*domain.HistoryEntry, error)

	// MarketHistory returns the `days` most recent market-level entries,
	// ordered by date ASC. The market mood for a date is the average of all
	// per-symbol scores recorded on that date.
	MarketHistory(ctx context.Context, days int) ([]*domain.HistoryEntry, error)

	// Delete removes the entry for (symbol, date). Reserved for the
	// backfill/repair path; returns ErrNotFound if no such entry exists.
	Delete(ctx context.Context, symbol string, date time.Time) error
}

// MessageArchiveStore keeps every scored message produced by aggregation
// runs for offline analysis. Append-only.
type MessageArchiveStore interface {
	// InsertBulk archives a batch of scored messages.
	InsertBulk(ctx context.Context, messages []*domain.ScoredMessage) error

	// SymbolMessages retrieves archived messages for a symbol within
	// [start, end], ordered by timestamp ASC.
	SymbolMessages(ctx context.Context, symbol string, start, end time.Time) ([]*domain.ScoredMessage, error)
}
