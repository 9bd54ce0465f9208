package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"dario.cat/mergo"

	"foyer/internal/core"
	"foyer/internal/snapshot"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store holds the whole dataset in memory and writes it back through the
// snapshot port after every successful mutation. All methods are safe for
// concurrent use; reads return copies.
type Store struct {
	mu    sync.Mutex
	state core.State
	snap  snapshot.Store
}

// Open loads the last snapshot, or seeds the default dataset when none
// exists. A snapshot missing its users collection gets the default
// accounts merged back in so the app never starts without a login.
func Open(ctx context.Context, snap snapshot.Store) (*Store, error) {
	state, err := snap.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		state = DefaultState()
		slog.InfoContext(ctx, "no snapshot found, seeding default dataset")
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	default:
		if err := mergo.Merge(&state, core.State{Users: DefaultState().Users}); err != nil {
			return nil, fmt.Errorf("merge defaults: %w", err)
		}
	}

	s := &Store{state: state, snap: snap}
	if err := snap.Save(ctx, s.state); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return s, nil
}

// Snapshot returns a deep copy of the current dataset.
func (s *Store) Snapshot() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Replace swaps in a whole new dataset, used by import.
func (s *Store) Replace(ctx context.Context, state core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = state.Clone()
	if err := s.persist(ctx); err != nil {
		s.state = prev
		return err
	}
	return nil
}

// persist writes the state through the snapshot port. Callers hold mu.
func (s *Store) persist(ctx context.Context) error {
	if err := s.snap.Save(ctx, s.state); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Transactions {
		if existing.ID == t.ID {
			return ErrDuplicateID
		}
	}
	s.state.Transactions = append(s.state.Transactions, t)
	if err := s.persist(ctx); err != nil {
		s.state.Transactions = s.state.Transactions[:len(s.state.Transactions)-1]
		return err
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.state.Transactions {
		if t.ID != id {
			continue
		}
		prev := s.state.Transactions
		s.state.Transactions = append(append([]core.Transaction(nil), prev[:i]...), prev[i+1:]...)
		if err := s.persist(ctx); err != nil {
			s.state.Transactions = prev
			return core.Transaction{}, err
		}
		return t, nil
	}
	return core.Transaction{}, ErrNotFound
}

func (s *Store) AddTemplate(ctx context.Context, f core.FixedTemplate) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Templates {
		if existing.ID == f.ID {
			return ErrDuplicateID
		}
	}
	s.state.Templates = append(s.state.Templates, f)
	if err := s.persist(ctx); err != nil {
		s.state.Templates = s.state.Templates[:len(s.state.Templates)-1]
		return err
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) (core.FixedTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.state.Templates {
		if f.ID != id {
			continue
		}
		prev := s.state.Templates
		s.state.Templates = append(append([]core.FixedTemplate(nil), prev[:i]...), prev[i+1:]...)
		if err := s.persist(ctx); err != nil {
			s.state.Templates = prev
			return core.FixedTemplate{}, err
		}
		return f, nil
	}
	return core.FixedTemplate{}, ErrNotFound
}

// SetBudget creates or updates the limit for a category.
func (s *Store) SetBudget(ctx context.Context, b core.MonthlyBudget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := append([]core.MonthlyBudget(nil), s.state.Budgets...)
	replaced := false
	for i, existing := range s.state.Budgets {
		if existing.Category == b.Category {
			s.state.Budgets[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		s.state.Budgets = append(s.state.Budgets, b)
	}
	if err := s.persist(ctx); err != nil {
		s.state.Budgets = prev
		return err
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, category core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.state.Budgets {
		if b.Category != category {
			continue
		}
		prev := s.state.Budgets
		s.state.Budgets = append(append([]core.MonthlyBudget(nil), prev[:i]...), prev[i+1:]...)
		if err := s.persist(ctx); err != nil {
			s.state.Budgets = prev
			return err
		}
		return nil
	}
	return ErrNotFound
}

func (s *Store) AddUser(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Users {
		if existing.ID == u.ID {
			return ErrDuplicateID
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return ErrUsernameTaken
		}
	}
	s.state.Users = append(s.state.Users, u)
	if err := s.persist(ctx); err != nil {
		s.state.Users = s.state.Users[:len(s.state.Users)-1]
		return err
	}
	return nil
}

// DeleteUser removes the account and every transaction and template it
// owns, so no orphaned records survive the deletion.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, u := range s.state.Users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	prev := s.state
	next := core.State{Budgets: s.state.Budgets}
	next.Users = append(append([]core.User(nil), s.state.Users[:idx]...), s.state.Users[idx+1:]...)
	for _, t := range s.state.Transactions {
		if t.OwnerID != id {
			next.Transactions = append(next.Transactions, t)
		}
	}
	for _, f := range s.state.Templates {
		if f.OwnerID != id {
			next.Templates = append(next.Templates, f)
		}
	}
	s.state = next
	if err := s.persist(ctx); err != nil {
		s.state = prev
		return err
	}
	return nil
}

// Authenticate checks the credentials and returns the account without
// its password.
func (s *Store) Authenticate(username, password string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.Users {
		if u.Username == username && u.Password == password {
			return u.Sanitized(), nil
		}
	}
	return core.User{}, ErrInvalidCredentials
}

// FindUser returns the account by id, password included.
func (s *Store) FindUser(id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, ErrNotFound
}
