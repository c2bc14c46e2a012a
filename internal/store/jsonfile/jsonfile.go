// Package jsonfile implements store.Store backed by a flat JSON file.
//
// The persisted form is a single JSON array of entities with snake_case
// field names — the same format the legacy tool wrote, so existing users.json
// and trains.json files load unchanged. Unknown fields in the file are
// ignored rather than rejected, which lets old files survive entity growth.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sakif/railbook/internal/store"
)

// Store persists one collection in a JSON file at a fixed path.
type Store[T any] struct {
	path string
}

// Compile-time check that *Store satisfies the collection contract.
var _ store.Store[struct{}] = (*Store[struct{}])(nil)

// New creates a store for the collection file at path, e.g.
// "data/users.json". The file is created lazily on first Load.
func New[T any](path string) *Store[T] {
	return &Store[T]{path: path}
}

// Load reads the whole collection from disk.
//
// If the file does not exist yet, Load creates the parent directory and an
// empty persisted collection, then returns an empty slice — first run is not
// an error.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if err := s.Save(ctx, []T{}); err != nil {
			return nil, fmt.Errorf("jsonfile: initialising %s: %w", s.path, err)
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: reading %s: %w", s.path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("jsonfile: decoding %s: %w", s.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save rewrites the entire collection.
//
// ATOMIC REPLACE:
// The new content is written to a temp file in the same directory and then
// renamed over the target. Rename is atomic on POSIX filesystems, so a crash
// mid-save leaves the previous snapshot intact — the file is never observed
// half-written.
func (s *Store[T]) Save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonfile: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: replacing %s: %w", s.path, err)
	}
	return nil
}
