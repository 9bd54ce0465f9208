// Package worker runs the backup process: it listens for dataset change
// messages and periodically writes timestamped export documents.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"foyer/internal/amqp"
	"foyer/internal/snapshot"
	"foyer/internal/transfer"
)

// ChangeConsumer delivers dataset change messages until the context ends.
type ChangeConsumer interface {
	ConsumeChanges(ctx context.Context, handler func(*amqp.ChangeMessage) error) error
}

// BackupWorker reads the shared snapshot and writes export documents to
// a backup directory. Backups beyond keepLast are pruned, oldest first.
type BackupWorker struct {
	snap     snapshot.Store
	dir      string
	interval time.Duration
	keepLast int

	// Change messages mark the dataset dirty; the next tick or the
	// message itself flushes a backup.
	dirty chan struct{}
}

const defaultKeepLast = 20

func NewBackupWorker(snap snapshot.Store, dir string, interval time.Duration) *BackupWorker {
	return &BackupWorker{
		snap:     snap,
		dir:      dir,
		interval: interval,
		keepLast: defaultKeepLast,
		dirty:    make(chan struct{}, 1),
	}
}

// HandleChangeMessage marks the dataset dirty. The write itself happens
// on the worker loop so a burst of changes produces one backup.
func (w *BackupWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "dataset change received",
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID)

	select {
	case w.dirty <- struct{}{}:
	default:
	}
	return nil
}

// Run consumes change messages and flushes backups until the context is
// canceled. A nil consumer degrades to timer-only backups.
func (w *BackupWorker) Run(ctx context.Context, consumer ChangeConsumer) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
				return w.HandleChangeMessage(ctx, msg)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-w.dirty:
			case <-ticker.C:
			}
			if err := w.Backup(ctx); err != nil {
				slog.ErrorContext(ctx, "backup failed", "error", err)
			}
		}
	})

	return g.Wait()
}

// Backup writes one export document and prunes old files.
func (w *BackupWorker) Backup(ctx context.Context) error {
	state, err := w.snap.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	name := fmt.Sprintf("foyer-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(w.dir, name)

	f, err := os.CreateTemp(w.dir, "backup-*.tmp")
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	if err := transfer.EncodeJSON(f, transfer.Export(state)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("close backup file: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("finalize backup file: %w", err)
	}

	slog.InfoContext(ctx, "backup written",
		"path", path,
		"transactions", len(state.Transactions),
		"templates", len(state.Templates),
		"budgets", len(state.Budgets))

	return w.prune()
}

func (w *BackupWorker) prune() error {
	matches, err := filepath.Glob(filepath.Join(w.dir, "foyer-*.json"))
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(matches) <= w.keepLast {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-w.keepLast] {
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to prune backup", "path", path, "error", err)
		}
	}
	return nil
}
