package services

import (
	"time"

	"foyer/internal/core"
)

// MonthView is everything the dashboard needs for one owner and month:
// the filtered transactions, their aggregates, the reconciliation state
// of the owner's templates and the shared budget limits.
type MonthView struct {
	Transactions []core.Transaction    `json:"transactions"`
	Summary      core.Summary          `json:"summary"`
	Templates    []core.TemplateStatus `json:"templates"`
	Budgets      []core.MonthlyBudget  `json:"budgets"`
}

// ViewMonth derives the dashboard for one owner and viewed period. Pure
// reads: nothing is persisted or published.
func (s *LedgerService) ViewMonth(ownerID string, month time.Month, year int, opts core.SummaryOptions) MonthView {
	state := s.store.Snapshot()

	scoped := core.FilterMonth(state.Transactions, ownerID, month, year)
	templates := core.FilterOwner(state.Templates, ownerID)

	return MonthView{
		Transactions: scoped,
		Summary:      core.Summarize(scoped, opts),
		Templates:    core.TemplateStatuses(templates, scoped, month, year),
		Budgets:      state.Budgets,
	}
}
