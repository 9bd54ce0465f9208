package core

import "errors"

// MinAdvisoryTransactions is the gate below which the advisory
// collaborator must not be invoked.
const MinAdvisoryTransactions = 3

// ErrNotEnoughData signals that the dataset is below the advisory gate.
var ErrNotEnoughData = errors.New("not enough transactions for analysis")

// AdvisoryInput is the contract the external advisory collaborator
// expects: transactions and budget limits passed verbatim. No
// budget-vs-actual computation happens here; the assessment is
// delegated entirely to the collaborator.
type AdvisoryInput struct {
	Transactions []Transaction   `json:"transactions"`
	Budgets      []MonthlyBudget `json:"budgets"`
}

// NewAdvisoryInput snapshots the data for the collaborator, enforcing
// the minimum-transactions gate.
func NewAdvisoryInput(transactions []Transaction, budgets []MonthlyBudget) (AdvisoryInput, error) {
	if len(transactions) < MinAdvisoryTransactions {
		return AdvisoryInput{}, ErrNotEnoughData
	}
	return AdvisoryInput{
		Transactions: append([]Transaction(nil), transactions...),
		Budgets:      append([]MonthlyBudget(nil), budgets...),
	}, nil
}
