package core

import "time"

// TemplateStatus is the rendering output of reconciliation: whether a
// template is already posted in the viewed month and, if so, which
// transaction marks it paid.
type TemplateStatus struct {
	Template  FixedTemplate `json:"template"`
	Checked   bool          `json:"checked"`
	MatchedID string        `json:"matchedId,omitempty"`
}

// MatchTransaction finds the transaction that marks a template as paid
// for the viewed period: equal description, equal amount, same month and
// year. Owner scoping is the caller's responsibility; pass only the
// current owner's transactions. Two templates sharing description and
// amount are indistinguishable here; templates are user-curated and
// expected to be uniquely named.
func MatchTransaction(f FixedTemplate, transactions []Transaction, month time.Month, year int) (Transaction, bool) {
	for _, t := range transactions {
		if t.Description == f.Description &&
			t.Amount == f.Amount &&
			t.Date.SameMonth(month, year) {
			return t, true
		}
	}
	return Transaction{}, false
}

// TemplateStatuses derives the checked state of every template against
// one month's transactions.
func TemplateStatuses(templates []FixedTemplate, transactions []Transaction, month time.Month, year int) []TemplateStatus {
	out := make([]TemplateStatus, 0, len(templates))
	for _, f := range templates {
		status := TemplateStatus{Template: f}
		if match, ok := MatchTransaction(f, transactions, month, year); ok {
			status.Checked = true
			status.MatchedID = match.ID
		}
		out = append(out, status)
	}
	return out
}

// TransactionFromTemplate builds the transaction that posts a template:
// description, amount, type and category are copied, the date is today
// (not the viewed period) and the id is supplied by the caller.
func TransactionFromTemplate(f FixedTemplate, id string, today Date) Transaction {
	return Transaction{
		ID:          id,
		OwnerID:     f.OwnerID,
		Date:        today,
		Amount:      f.Amount,
		Type:        f.Type,
		Category:    f.Category,
		Description: f.Description,
	}
}
