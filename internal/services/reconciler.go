package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"foyer/internal/amqp"
	"foyer/internal/core"
	"foyer/internal/store"
)

var (
	// ErrAlreadyChecked means the template already has a matching
	// transaction in the viewed month; checking it again would post a
	// duplicate.
	ErrAlreadyChecked = errors.New("template already checked for this month")
	// ErrNoMatch means no transaction marks the template as paid in the
	// viewed month, so there is nothing to uncheck. Typical cause: the
	// matching transaction was edited or deleted in between.
	ErrNoMatch = errors.New("no matching transaction for this month")
)

// CheckTemplate posts the transaction that marks a template paid for the
// viewed month. The posted date is today, not the viewed period.
func (s *LedgerService) CheckTemplate(ctx context.Context, ownerID, templateID string, month time.Month, year int) (core.Transaction, error) {
	f, err := s.findTemplate(ownerID, templateID)
	if err != nil {
		return core.Transaction{}, err
	}

	scoped := core.FilterMonth(s.store.Snapshot().Transactions, ownerID, month, year)
	if _, ok := core.MatchTransaction(f, scoped, month, year); ok {
		return core.Transaction{}, ErrAlreadyChecked
	}

	t := core.TransactionFromTemplate(f, uuid.NewString(), core.Today())
	if err := s.store.AddTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionCreated, t.ID)
	return t, nil
}

// UncheckTemplate removes the transaction that marks a template paid for
// the viewed month. The match is re-derived at call time, never trusted
// from the client.
func (s *LedgerService) UncheckTemplate(ctx context.Context, ownerID, templateID string, month time.Month, year int) error {
	f, err := s.findTemplate(ownerID, templateID)
	if err != nil {
		return err
	}

	scoped := core.FilterMonth(s.store.Snapshot().Transactions, ownerID, month, year)
	match, ok := core.MatchTransaction(f, scoped, month, year)
	if !ok {
		return ErrNoMatch
	}

	return s.DeleteTransaction(ctx, match.ID)
}

func (s *LedgerService) findTemplate(ownerID, templateID string) (core.FixedTemplate, error) {
	for _, f := range s.store.Snapshot().Templates {
		if f.ID == templateID && f.OwnerID == ownerID {
			return f, nil
		}
	}
	return core.FixedTemplate{}, fmt.Errorf("template %s: %w", templateID, store.ErrNotFound)
}
