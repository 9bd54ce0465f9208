// Package snapshot defines the persistence port: whole-state load and
// save of the budget dataset. Persistence is a synchronous full-document
// overwrite after every mutation; last writer wins.
package snapshot

import (
	"context"
	"errors"

	"foyer/internal/core"
)

// ErrNoSnapshot is returned by Load when no snapshot exists yet. Callers
// treat it as "first run", not as a failure.
var ErrNoSnapshot = errors.New("no snapshot")

type Store interface {
	// Load reads the whole persisted state, or ErrNoSnapshot.
	Load(ctx context.Context) (core.State, error)
	// Save overwrites the whole persisted state.
	Save(ctx context.Context, state core.State) error
	// Close releases underlying resources.
	Close() error
}
