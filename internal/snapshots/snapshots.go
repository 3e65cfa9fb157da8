// Package snapshots serves externally supplied per-symbol snapshot files
// (current sentiment, latest price). The files are produced by an upstream
// collaborator; this package only reads and relays them.
package snapshots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSnapshot is returned when no snapshot file exists for a symbol.
var ErrNoSnapshot = errors.New("no snapshot for symbol")

// Dir reads snapshot JSON documents from a directory. File naming follows
// the collaborator convention: sentiment_<SYMBOL>.json, price_<SYMBOL>.json.
type Dir struct {
	path string
}

// NewDir creates a snapshot reader over the given directory.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Sentiment returns the raw sentiment snapshot document for a symbol.
func (d *Dir) Sentiment(symbol string) ([]byte, error) {
	return d.read("sentiment", symbol)
}

// Price returns the raw price snapshot document for a symbol.
func (d *Dir) Price(symbol string) ([]byte, error) {
	return d.read("price", symbol)
}

func (d *Dir) read(kind, symbol string) ([]byte, error) {
	symbol = strings.ToUpper(symbol)
	path := filepath.Join(d.path, fmt.Sprintf("%s_%s.json", kind, symbol))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, symbol)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return data, nil
}
