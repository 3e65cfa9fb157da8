package headlines

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all_headlines.json")

	content := `[
		{"symbol": "CE", "text": "CE posts record quarterly revenue"},
		{"symbol": "LHX", "text": "LHX faces regulatory probe", "author": "Newswire"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	pool, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("Expected 2 headlines, got %d", len(pool))
	}
	if pool[0].Symbol != "CE" {
		t.Errorf("Order not preserved: got %q first", pool[0].Symbol)
	}
	if pool[1].Author != "Newswire" {
		t.Errorf("Author not decoded: got %q", pool[1].Author)
	}
}

func TestFileSource_EmptyPool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all_headlines.json")
	os.WriteFile(path, []byte(`[]`), 0o644)

	_, err := NewFileSource(path).Load(context.Background())
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Expected ErrEmptyPool, got %v", err)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	if err == nil {
		t.Error("Expected error for missing pool file")
	}
}

func TestFileSource_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all_headlines.json")
	os.WriteFile(path, []byte(`{not json`), 0o644)

	_, err := NewFileSource(path).Load(context.Background())
	if err == nil {
		t.Error("Expected error for malformed pool file")
	}
}
