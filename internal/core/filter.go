package core

import "time"

// FilterMonth selects the transactions belonging to one owner and one
// viewed (month, year). Comparison uses the date's own calendar fields;
// no timezone normalization is applied. The filter is idempotent:
// filtering an already-filtered set yields the same set.
func FilterMonth(transactions []Transaction, ownerID string, month time.Month, year int) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.OwnerID == ownerID && t.Date.SameMonth(month, year) {
			out = append(out, t)
		}
	}
	return out
}

// FilterOwner selects an owner's templates, preserving order.
func FilterOwner(templates []FixedTemplate, ownerID string) []FixedTemplate {
	out := make([]FixedTemplate, 0, len(templates))
	for _, f := range templates {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out
}
