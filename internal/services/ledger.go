package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foyer/internal/amqp"
	"foyer/internal/core"
	"foyer/internal/store"
)

// ChangePublisher announces dataset mutations. Publishing is best-effort;
// the ledger never fails a request because the broker is down.
type ChangePublisher interface {
	PublishChange(ctx context.Context, entity, action, id string) error
}

// LedgerService orchestrates dataset mutations across the store and the
// message broker.
type LedgerService struct {
	store     *store.Store
	publisher ChangePublisher
}

func NewLedgerService(st *store.Store, publisher ChangePublisher) *LedgerService {
	return &LedgerService{store: st, publisher: publisher}
}

// NewTransaction is the creation payload; the id is assigned here.
type NewTransaction struct {
	OwnerID     string
	Date        core.Date
	Amount      core.Money
	Type        core.EntryType
	Category    core.Category
	Description string
}

func (s *LedgerService) CreateTransaction(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	t := core.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Date:        in.Date,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Description: in.Description,
	}
	if err := s.store.AddTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionCreated, t.ID)
	return t, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionDeleted, id)
	return nil
}

// NewTemplate is the creation payload for a recurring pattern.
type NewTemplate struct {
	OwnerID     string
	Description string
	Amount      core.Money
	Type        core.EntryType
	Category    core.Category
}

func (s *LedgerService) CreateTemplate(ctx context.Context, in NewTemplate) (core.FixedTemplate, error) {
	f := core.FixedTemplate{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
	}
	if err := s.store.AddTemplate(ctx, f); err != nil {
		return core.FixedTemplate{}, fmt.Errorf("add template: %w", err)
	}
	s.publish(ctx, amqp.EntityTemplate, amqp.ActionCreated, f.ID)
	return f, nil
}

func (s *LedgerService) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	s.publish(ctx, amqp.EntityTemplate, amqp.ActionDeleted, id)
	return nil
}

func (s *LedgerService) SetBudget(ctx context.Context, b core.MonthlyBudget) error {
	if err := s.store.SetBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	s.publish(ctx, amqp.EntityBudget, amqp.ActionUpdated, string(b.Category))
	return nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, category core.Category) error {
	if err := s.store.DeleteBudget(ctx, category); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	s.publish(ctx, amqp.EntityBudget, amqp.ActionDeleted, string(category))
	return nil
}

// NewUser is the account creation payload.
type NewUser struct {
	Username string
	Password string
	Role     core.UserRole
}

func (s *LedgerService) CreateUser(ctx context.Context, in NewUser) (core.User, error) {
	u := core.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		Password:  in.Password,
		Role:      in.Role,
		CreatedAt: time.Now(),
	}
	if err := s.store.AddUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("add user: %w", err)
	}
	s.publish(ctx, amqp.EntityUser, amqp.ActionCreated, u.ID)
	return u.Sanitized(), nil
}

func (s *LedgerService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.publish(ctx, amqp.EntityUser, amqp.ActionDeleted, id)
	return nil
}

func (s *LedgerService) Login(username, password string) (core.User, error) {
	return s.store.Authenticate(username, password)
}

// State hands out a copy of the whole dataset.
func (s *LedgerService) State() core.State {
	return s.store.Snapshot()
}

func (s *LedgerService) publish(ctx context.Context, entity, action, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, entity, action, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish change message",
			"entity", entity, "action", action, "id", id, "error", err)
	}
}
