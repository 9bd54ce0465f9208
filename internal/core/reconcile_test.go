package core

import (
	"testing"
	"time"
)

var salaire = FixedTemplate{
	ID:          "f1",
	OwnerID:     "user1",
	Description: "Salaire",
	Amount:      Money{Units: 1500000},
	Type:        Income,
	Category:    CategorySalary,
}

func TestMatchTransactionNoMatch(t *testing.T) {
	// No transactions in July 2024: template unchecked.
	if _, ok := MatchTransaction(salaire, nil, time.July, 2024); ok {
		t.Fatal("expected no match on empty set")
	}

	other := []Transaction{
		// Same description, different amount.
		tx("t1", "user1", NewDate(2024, time.July, 1), 1400000, Income, CategorySalary, "Salaire"),
		// Same description and amount, wrong month.
		tx("t2", "user1", NewDate(2024, time.June, 30), 1500000, Income, CategorySalary, "Salaire"),
		// Same amount, different description.
		tx("t3", "user1", NewDate(2024, time.July, 2), 1500000, Income, CategoryBonus, "Prime"),
	}
	if _, ok := MatchTransaction(salaire, other, time.July, 2024); ok {
		t.Fatal("expected no match")
	}
}

func TestMatchTransactionFinds(t *testing.T) {
	set := []Transaction{
		tx("t1", "user1", NewDate(2024, time.July, 15), 1500000, Income, CategorySalary, "Salaire"),
	}
	match, ok := MatchTransaction(salaire, set, time.July, 2024)
	if !ok {
		t.Fatal("expected a match")
	}
	if match.ID != "t1" {
		t.Errorf("matched %s, want t1", match.ID)
	}
}

func TestTemplateStatuses(t *testing.T) {
	loyer := FixedTemplate{
		ID: "f2", OwnerID: "user1", Description: "Loyer",
		Amount: Money{Units: 400000}, Type: Expense, Category: CategoryHousing,
	}
	set := []Transaction{
		tx("t1", "user1", NewDate(2024, time.July, 15), 1500000, Income, CategorySalary, "Salaire"),
	}
	statuses := TemplateStatuses([]FixedTemplate{salaire, loyer}, set, time.July, 2024)
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if !statuses[0].Checked || statuses[0].MatchedID != "t1" {
		t.Errorf("salaire status = %+v, want checked with t1", statuses[0])
	}
	if statuses[1].Checked || statuses[1].MatchedID != "" {
		t.Errorf("loyer status = %+v, want unchecked", statuses[1])
	}
}

func TestTransactionFromTemplate(t *testing.T) {
	today := NewDate(2024, time.July, 15)
	got := TransactionFromTemplate(salaire, "new-id", today)
	want := Transaction{
		ID:          "new-id",
		OwnerID:     "user1",
		Date:        today,
		Amount:      Money{Units: 1500000},
		Type:        Income,
		Category:    CategorySalary,
		Description: "Salaire",
	}
	if got != want {
		t.Errorf("TransactionFromTemplate() = %+v, want %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("generated transaction invalid: %v", err)
	}
}

// Toggling a template on then off must return the set to its pre-toggle
// content, for any period.
func TestToggleRoundTrip(t *testing.T) {
	before := []Transaction{
		tx("t1", "user1", NewDate(2024, time.July, 1), 42000, Expense, CategoryLeisure, "Cinéma"),
	}
	today := NewDate(2024, time.July, 15)

	// Toggle on.
	created := TransactionFromTemplate(salaire, "gen-1", today)
	after := append(append([]Transaction(nil), before...), created)

	match, ok := MatchTransaction(salaire, after, time.July, 2024)
	if !ok || match.ID != "gen-1" {
		t.Fatalf("match after toggle-on = (%v, %v)", match, ok)
	}

	// Toggle off: delete the matched transaction by id.
	var restored []Transaction
	for _, tr := range after {
		if tr.ID != match.ID {
			restored = append(restored, tr)
		}
	}
	if len(restored) != len(before) || restored[0] != before[0] {
		t.Errorf("round trip failed: %+v != %+v", restored, before)
	}
}
