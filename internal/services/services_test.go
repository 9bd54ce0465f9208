package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"foyer/internal/core"
	"foyer/internal/snapshot/memory"
	"foyer/internal/store"
)

type recordedChange struct {
	entity, action, id string
}

type fakePublisher struct {
	changes []recordedChange
	fail    bool
}

func (p *fakePublisher) PublishChange(_ context.Context, entity, action, id string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.changes = append(p.changes, recordedChange{entity, action, id})
	return nil
}

type fakeAdvisor struct {
	reply string
	err   error
	calls int
	last  core.AdvisoryInput
}

func (a *fakeAdvisor) Analyze(_ context.Context, input core.AdvisoryInput) (string, error) {
	a.calls++
	a.last = input
	return a.reply, a.err
}

func newLedger(t *testing.T, pub ChangePublisher) *LedgerService {
	t.Helper()
	st, err := store.Open(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewLedgerService(st, pub)
}

func addExpense(t *testing.T, s *LedgerService, owner string, d core.Date, units int64, cat core.Category, desc string) core.Transaction {
	t.Helper()
	tr, err := s.CreateTransaction(context.Background(), NewTransaction{
		OwnerID:     owner,
		Date:        d,
		Amount:      core.Money{Units: units},
		Type:        core.Expense,
		Category:    cat,
		Description: desc,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tr
}

func TestCreateTransactionAssignsIDAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	s := newLedger(t, pub)

	tr := addExpense(t, s, "user1", core.NewDate(2025, time.March, 5), 50000, core.CategoryFood, "Marché")
	if tr.ID == "" {
		t.Fatal("transaction id not assigned")
	}
	if len(pub.changes) != 1 || pub.changes[0] != (recordedChange{"transaction", "created", tr.ID}) {
		t.Errorf("unexpected published changes: %+v", pub.changes)
	}
}

func TestPublisherFailureDoesNotFailMutation(t *testing.T) {
	s := newLedger(t, &fakePublisher{fail: true})
	tr := addExpense(t, s, "user1", core.NewDate(2025, time.March, 5), 50000, core.CategoryFood, "Marché")
	if len(s.State().Transactions) != 1 || s.State().Transactions[0].ID != tr.ID {
		t.Error("transaction lost after publish failure")
	}
}

func TestNilPublisherIsFine(t *testing.T) {
	s := newLedger(t, nil)
	addExpense(t, s, "user1", core.NewDate(2025, time.March, 5), 50000, core.CategoryFood, "Marché")
}

func TestCheckTemplateRoundTrip(t *testing.T) {
	s := newLedger(t, &fakePublisher{})
	ctx := context.Background()
	now := time.Now()

	// The seeded dataset carries the Salaire template for user1.
	templates := s.State().Templates
	if len(templates) != 1 {
		t.Fatalf("expected the seeded template, got %+v", templates)
	}
	salaire := templates[0]

	view := s.ViewMonth("user1", now.Month(), now.Year(), core.SummaryOptions{})
	if view.Templates[0].Checked {
		t.Fatal("template checked before any transaction exists")
	}

	posted, err := s.CheckTemplate(ctx, "user1", salaire.ID, now.Month(), now.Year())
	if err != nil {
		t.Fatalf("CheckTemplate: %v", err)
	}
	if posted.Description != salaire.Description || posted.Amount != salaire.Amount {
		t.Errorf("posted transaction does not mirror the template: %+v", posted)
	}
	if !posted.Date.SameMonth(now.Month(), now.Year()) {
		t.Errorf("posted date %v not in current month", posted.Date)
	}

	view = s.ViewMonth("user1", now.Month(), now.Year(), core.SummaryOptions{})
	if !view.Templates[0].Checked || view.Templates[0].MatchedID != posted.ID {
		t.Errorf("template not reported checked: %+v", view.Templates[0])
	}

	if _, err := s.CheckTemplate(ctx, "user1", salaire.ID, now.Month(), now.Year()); !errors.Is(err, ErrAlreadyChecked) {
		t.Errorf("second check: got %v, want ErrAlreadyChecked", err)
	}

	if err := s.UncheckTemplate(ctx, "user1", salaire.ID, now.Month(), now.Year()); err != nil {
		t.Fatalf("UncheckTemplate: %v", err)
	}
	view = s.ViewMonth("user1", now.Month(), now.Year(), core.SummaryOptions{})
	if view.Templates[0].Checked {
		t.Error("template still checked after uncheck")
	}
	if len(view.Transactions) != 0 {
		t.Errorf("posted transaction survived uncheck: %+v", view.Transactions)
	}
}

func TestUncheckTemplateWithoutMatch(t *testing.T) {
	s := newLedger(t, nil)
	now := time.Now()
	salaire := s.State().Templates[0]

	err := s.UncheckTemplate(context.Background(), "user1", salaire.ID, now.Month(), now.Year())
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("got %v, want ErrNoMatch", err)
	}
}

func TestCheckTemplateUnknownTemplate(t *testing.T) {
	s := newLedger(t, nil)
	now := time.Now()

	if _, err := s.CheckTemplate(context.Background(), "user1", "nope", now.Month(), now.Year()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	// Owner scoping: user1's template is invisible to admin.
	salaire := s.State().Templates[0]
	if _, err := s.CheckTemplate(context.Background(), "admin", salaire.ID, now.Month(), now.Year()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-owner check: got %v, want ErrNotFound", err)
	}
}

func TestViewMonthScopesAndAggregates(t *testing.T) {
	s := newLedger(t, nil)
	march := core.NewDate(2025, time.March, 10)

	addExpense(t, s, "user1", march, 300000, core.CategoryFood, "Courses")
	addExpense(t, s, "user1", march, 200000, core.CategoryTransport, "Taxi-brousse")
	addExpense(t, s, "admin", march, 999999, core.CategoryLeisure, "Autre foyer")
	addExpense(t, s, "user1", core.NewDate(2025, time.April, 2), 100000, core.CategoryFood, "Avril")

	view := s.ViewMonth("user1", time.March, 2025, core.SummaryOptions{})
	if len(view.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(view.Transactions))
	}
	if view.Summary.TotalExpense.Units != 500000 {
		t.Errorf("total expense %d, want 500000", view.Summary.TotalExpense.Units)
	}
	if len(view.Budgets) != 2 {
		t.Errorf("budgets missing from view: %+v", view.Budgets)
	}
}

func TestAdviseEnforcesGate(t *testing.T) {
	adv := &fakeAdvisor{reply: "Bravo"}
	ledger := newLedger(t, nil)
	s := NewAdvisorService(ledger, adv)
	ctx := context.Background()
	march := core.NewDate(2025, time.March, 10)

	addExpense(t, ledger, "user1", march, 100000, core.CategoryFood, "Un")
	addExpense(t, ledger, "user1", march, 100000, core.CategoryFood, "Deux")

	if _, err := s.Advise(ctx, "user1"); !errors.Is(err, core.ErrNotEnoughData) {
		t.Fatalf("got %v, want ErrNotEnoughData", err)
	}
	if adv.calls != 0 {
		t.Error("advisor invoked below the gate")
	}

	addExpense(t, ledger, "user1", march, 100000, core.CategoryFood, "Trois")
	text, err := s.Advise(ctx, "user1")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if text != "Bravo" {
		t.Errorf("got %q, want the advisor's reply", text)
	}
	if len(adv.last.Transactions) != 3 || len(adv.last.Budgets) != 2 {
		t.Errorf("advisor input %d transactions / %d budgets, want 3 / 2", len(adv.last.Transactions), len(adv.last.Budgets))
	}
}

func TestAdviseScopesToOwner(t *testing.T) {
	adv := &fakeAdvisor{reply: "ok"}
	ledger := newLedger(t, nil)
	s := NewAdvisorService(ledger, adv)
	march := core.NewDate(2025, time.March, 10)

	for i := 0; i < 3; i++ {
		addExpense(t, ledger, "admin", march, 100000, core.CategoryFood, fmt.Sprintf("admin-%d", i))
	}
	addExpense(t, ledger, "user1", march, 100000, core.CategoryFood, "seul")

	if _, err := s.Advise(context.Background(), "user1"); !errors.Is(err, core.ErrNotEnoughData) {
		t.Errorf("other owners' data leaked past the gate: %v", err)
	}
}

func TestAdviseFallsBackOnFailure(t *testing.T) {
	adv := &fakeAdvisor{err: errors.New("quota exceeded")}
	ledger := newLedger(t, nil)
	s := NewAdvisorService(ledger, adv)
	march := core.NewDate(2025, time.March, 10)

	for i := 0; i < 3; i++ {
		addExpense(t, ledger, "user1", march, 100000, core.CategoryFood, fmt.Sprintf("dépense-%d", i))
	}

	text, err := s.Advise(context.Background(), "user1")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if text != FallbackAdvice {
		t.Errorf("got %q, want the fallback message", text)
	}
}

func TestDeleteUserPublishesCascade(t *testing.T) {
	pub := &fakePublisher{}
	s := newLedger(t, pub)

	if err := s.DeleteUser(context.Background(), "user1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if len(s.State().Templates) != 0 {
		t.Error("owned template survived user deletion")
	}
	found := false
	for _, c := range pub.changes {
		if c == (recordedChange{"user", "deleted", "user1"}) {
			found = true
		}
	}
	if !found {
		t.Errorf("no user deletion message published: %+v", pub.changes)
	}
}
