// Package file persists the dataset as a single JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"foyer/internal/core"
	"foyer/internal/snapshot"
)

type Store struct {
	path string
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Load(_ context.Context) (core.State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return core.State{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return core.State{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return core.State{}, snapshot.ErrNoSnapshot
	}
	var state core.State
	if err := json.Unmarshal(data, &state); err != nil {
		return core.State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return state, nil
}

func (s *Store) Save(_ context.Context, state core.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	// Write-then-rename keeps the overwrite whole-document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
