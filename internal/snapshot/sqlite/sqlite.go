// Package sqlite persists the dataset in a local SQLite database. The
// snapshot semantics stay whole-document: Save replaces every row inside
// one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"foyer/internal/core"
	"foyer/internal/snapshot"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (core.State, error) {
	var marker string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot_meta WHERE key = 'saved_at'`).Scan(&marker)
	if err == sql.ErrNoRows {
		return core.State{}, snapshot.ErrNoSnapshot
	}
	if err != nil {
		return core.State{}, fmt.Errorf("read snapshot marker: %w", err)
	}

	var state core.State

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password, role, created_at FROM users ORDER BY seq`)
	if err != nil {
		return core.State{}, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u core.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &createdAt); err != nil {
			return core.State{}, fmt.Errorf("scan user: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			u.CreatedAt = t
		}
		state.Users = append(state.Users, u)
	}
	if err := rows.Err(); err != nil {
		return core.State{}, fmt.Errorf("iterate users: %w", err)
	}

	txRows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, date, amount, type, category, description FROM transactions ORDER BY seq`)
	if err != nil {
		return core.State{}, fmt.Errorf("load transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var t core.Transaction
		var date string
		if err := txRows.Scan(&t.ID, &t.OwnerID, &date, &t.Amount.Units, &t.Type, &t.Category, &t.Description); err != nil {
			return core.State{}, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return core.State{}, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		t.Date = d
		state.Transactions = append(state.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return core.State{}, fmt.Errorf("iterate transactions: %w", err)
	}

	tplRows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, description, amount, type, category FROM templates ORDER BY seq`)
	if err != nil {
		return core.State{}, fmt.Errorf("load templates: %w", err)
	}
	defer tplRows.Close()
	for tplRows.Next() {
		var f core.FixedTemplate
		if err := tplRows.Scan(&f.ID, &f.OwnerID, &f.Description, &f.Amount.Units, &f.Type, &f.Category); err != nil {
			return core.State{}, fmt.Errorf("scan template: %w", err)
		}
		state.Templates = append(state.Templates, f)
	}
	if err := tplRows.Err(); err != nil {
		return core.State{}, fmt.Errorf("iterate templates: %w", err)
	}

	bRows, err := s.db.QueryContext(ctx,
		`SELECT category, limit_amount FROM budgets ORDER BY seq`)
	if err != nil {
		return core.State{}, fmt.Errorf("load budgets: %w", err)
	}
	defer bRows.Close()
	for bRows.Next() {
		var b core.MonthlyBudget
		if err := bRows.Scan(&b.Category, &b.Limit.Units); err != nil {
			return core.State{}, fmt.Errorf("scan budget: %w", err)
		}
		state.Budgets = append(state.Budgets, b)
	}
	if err := bRows.Err(); err != nil {
		return core.State{}, fmt.Errorf("iterate budgets: %w", err)
	}

	return state, nil
}

func (s *Store) Save(ctx context.Context, state core.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "transactions", "templates", "budgets"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, u := range state.Users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, password, role, created_at) VALUES (?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Password, string(u.Role), u.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}
	for _, t := range state.Transactions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, owner_id, date, amount, type, category, description)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.OwnerID, t.Date.String(), t.Amount.Units, string(t.Type), string(t.Category), t.Description)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	for _, f := range state.Templates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO templates (id, owner_id, description, amount, type, category)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			f.ID, f.OwnerID, f.Description, f.Amount.Units, string(f.Type), string(f.Category))
		if err != nil {
			return fmt.Errorf("insert template %s: %w", f.ID, err)
		}
	}
	for _, b := range state.Budgets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (category, limit_amount) VALUES (?, ?)`,
			string(b.Category), b.Limit.Units)
		if err != nil {
			return fmt.Errorf("insert budget %s: %w", b.Category, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (key, value) VALUES ('saved_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("update snapshot marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot written to SQLite",
		"transactions", len(state.Transactions),
		"templates", len(state.Templates),
		"budgets", len(state.Budgets),
		"users", len(state.Users))
	return nil
}
