// Package memory is a snapshot store that never touches disk. Useful
// for tests and for running without persistence.
package memory

import (
	"context"
	"sync"

	"foyer/internal/core"
	"foyer/internal/snapshot"
)

type Store struct {
	mu    sync.Mutex
	state core.State
	saved bool
	// Saves counts Save calls, handy in tests asserting save-on-change.
	Saves int
}

func New() *Store {
	return &Store{}
}

// Seed preloads a state so the next Load returns it.
func Seed(state core.State) *Store {
	return &Store{state: state.Clone(), saved: true}
}

func (s *Store) Load(_ context.Context) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return core.State{}, snapshot.ErrNoSnapshot
	}
	return s.state.Clone(), nil
}

func (s *Store) Save(_ context.Context, state core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.saved = true
	s.Saves++
	return nil
}

func (s *Store) Close() error { return nil }
