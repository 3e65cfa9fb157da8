package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"market-mood-lab/internal/domain"
	"market-mood-lab/internal/storage"
)

// HistoryStore implements storage.HistoryStore using PostgreSQL.
// The (symbol, date) unique constraint plus ON CONFLICT DO UPDATE makes the
// daily upsert atomic per key; concurrent snapshot runs for the same day
// cannot produce duplicate rows or lost updates.
type HistoryStore struct {
	pool *Pool
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(pool *Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

const upsertHistoryQuery = `
	INSERT INTO mood_history (symbol, date, mood_score)
	VALUES ($1, $2, $3)
	ON CONFLICT (symbol, date) DO UPDATE SET mood_score = EXCLUDED.mood_score
`

// Upsert inserts or replaces the entry for (symbol, date). Last write wins.
func (s *HistoryStore) Upsert(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry == nil || entry.Symbol == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, upsertHistoryQuery,
		entry.Symbol,
		domain.Day(entry.Date),
		entry.MoodScore,
	)
	if err != nil {
		return fmt.Errorf("upsert history entry: %w", err)
	}
	return nil
}

// UpsertBulk upserts multiple entries in one transaction.
func (s *HistoryStore) UpsertBulk(ctx context.Context, entries []*domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		if entry == nil || entry.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		_, err := tx.Exec(ctx, upsertHistoryQuery,
			entry.Symbol,
			domain.Day(entry.Date),
			entry.MoodScore,
		)
		if err != nil {
			return fmt.Errorf("upsert history entry in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// SymbolHistory returns the `days` most recent entries for a symbol,
// ordered by date ASC.
func (s *HistoryStore) SymbolHistory(ctx context.Context, symbol string, days int) ([]*domain.HistoryEntry, error) {
	if symbol == "" || days < 1 {
		return nil, storage.ErrInvalidInput
	}

	// Inner query selects the most recent rows, outer restores ASC order.
	query := `
		SELECT symbol, date, mood_score FROM (
			SELECT symbol, date, mood_score
			FROM mood_history
			WHERE symbol = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("get symbol history: %w", err)
	}
	defer rows.Close()

	return scanHistoryEntries(rows)
}

// MarketHistory returns the `days` most recent per-date averages across all
// symbols, ordered by date ASC.
func (s *HistoryStore) MarketHistory(ctx context.Context, days int) ([]*domain.HistoryEntry, error) {
	if days < 1 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT symbol, date, mood_score FROM (
			SELECT '' AS symbol, date, AVG(mood_score) AS mood_score
			FROM mood_history
			GROUP BY date
			ORDER BY date DESC
			LIMIT $1
		) recent
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("get market history: %w", err)
	}
	defer rows.Close()

	return scanHistoryEntries(rows)
}

// Delete removes the entry for (symbol, date). Backfill/repair path only.
func (s *HistoryStore) Delete(ctx context.Context, symbol string, date time.Time) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM mood_history WHERE symbol = $1 AND date = $2`,
		symbol, domain.Day(date),
	)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanHistoryEntries scans query results into history entries.
func scanHistoryEntries(rows pgx.Rows) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var date time.Time
		if err := rows.Scan(&entry.Symbol, &date, &entry.MoodScore); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Date = domain.Day(date)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history entries: %w", err)
	}
	return entries, nil
}
