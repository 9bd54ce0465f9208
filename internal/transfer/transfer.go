// Package transfer moves the dataset in and out of the app: JSON
// export/import and an XLSX report. Accounts never leave through here.
package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"foyer/internal/core"
)

// Document is the interchange shape. A nil collection means "not in the
// file, keep what you have"; an empty one means "replace with nothing".
type Document struct {
	Transactions []core.Transaction   `json:"transactions,omitempty"`
	Templates    []core.FixedTemplate `json:"templates,omitempty"`
	Budgets      []core.MonthlyBudget `json:"budgets,omitempty"`
}

// Export builds the interchange document from a state. Users are
// deliberately excluded.
func Export(state core.State) Document {
	return Document{
		Transactions: append([]core.Transaction(nil), state.Transactions...),
		Templates:    append([]core.FixedTemplate(nil), state.Templates...),
		Budgets:      append([]core.MonthlyBudget(nil), state.Budgets...),
	}
}

// Apply replaces each collection the document carries, wholesale, and
// leaves the rest of the state alone. Every imported record is validated
// before anything is touched; one bad record rejects the whole import.
func Apply(state core.State, doc Document) (core.State, error) {
	for i, t := range doc.Transactions {
		if err := t.Validate(); err != nil {
			return core.State{}, fmt.Errorf("transaction %d (%s): %w", i, t.ID, err)
		}
	}
	for i, f := range doc.Templates {
		if err := f.Validate(); err != nil {
			return core.State{}, fmt.Errorf("template %d (%s): %w", i, f.ID, err)
		}
	}
	for i, b := range doc.Budgets {
		if err := b.Validate(); err != nil {
			return core.State{}, fmt.Errorf("budget %d (%s): %w", i, b.Category, err)
		}
	}

	next := state.Clone()
	if doc.Transactions != nil {
		next.Transactions = append([]core.Transaction(nil), doc.Transactions...)
	}
	if doc.Templates != nil {
		next.Templates = append([]core.FixedTemplate(nil), doc.Templates...)
	}
	if doc.Budgets != nil {
		next.Budgets = append([]core.MonthlyBudget(nil), doc.Budgets...)
	}
	return next, nil
}

// EncodeJSON writes the document as indented JSON.
func EncodeJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// DecodeJSON reads an interchange document, rejecting unknown shapes
// early rather than at apply time.
func DecodeJSON(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode import: %w", err)
	}
	return doc, nil
}
