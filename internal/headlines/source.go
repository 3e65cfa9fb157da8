// Package headlines provides access to the raw headline pool consumed by
// the aggregation pipeline. The pool format is owned by an external
// collaborator; this package only reads it.
package headlines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"market-mood-lab/internal/domain"
)

// ErrEmptyPool is returned when the pool exists but contains no headlines.
var ErrEmptyPool = errors.New("headline pool is empty")

// Source provides the current headline pool, ordered as supplied.
type Source interface {
	Load(ctx context.Context) ([]*domain.Headline, error)
}

// FileSource reads the pool from a JSON file: an array of
// {"symbol": ..., "text": ..., "author"?: ..., "timestamp"?: ...} objects.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by the JSON file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Compile-time interface check.
var _ Source = (*FileSource)(nil)

// Load reads and decodes the pool file.
func (s *FileSource) Load(_ context.Context) ([]*domain.Headline, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read headline pool %s: %w", s.path, err)
	}

	var pool []*domain.Headline
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("decode headline pool %s: %w", s.path, err)
	}

	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return pool, nil
}

// StaticSource serves a fixed pool. Used in tests and fixtures.
type StaticSource struct {
	pool []*domain.Headline
}

// NewStaticSource creates a source returning the given pool on every load.
func NewStaticSource(pool []*domain.Headline) *StaticSource {
	return &StaticSource{pool: pool}
}

// Compile-time interface check.
var _ Source = (*StaticSource)(nil)

// Load returns the fixed pool.
func (s *StaticSource) Load(_ context.Context) ([]*domain.Headline, error) {
	if len(s.pool) == 0 {
		return nil, ErrEmptyPool
	}
	return s.pool, nil
}
