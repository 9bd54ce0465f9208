// Package backend selects the snapshot persistence backend from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"foyer/internal/config"
	"foyer/internal/snapshot"
	"foyer/internal/snapshot/file"
	"foyer/internal/snapshot/memory"
	"foyer/internal/snapshot/sqlite"
)

// Type represents the snapshot backend kind.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Open builds the snapshot store the config asks for. The caller owns
// the returned store and must Close it.
func Open(cfg *config.Config, logger *slog.Logger) (snapshot.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	switch t {
	case FileBackend:
		st, err := file.New(cfg.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		logger.Info("using file snapshot backend", "path", cfg.SnapshotPath)
		return st, nil
	case SQLiteBackend:
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("using sqlite snapshot backend", "db_path", cfg.SQLiteDBPath)
		return st, nil
	case MemoryBackend:
		logger.Info("using memory snapshot backend, data will not survive restarts")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
