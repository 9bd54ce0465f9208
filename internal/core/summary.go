package core

import "sort"

const (
	// SortInsertion keeps storage order: "recent" means most recently
	// added, matching the original behavior.
	SortInsertion SortStrategy = "insertion"
	// SortByDate orders the activity series chronologically before
	// truncation.
	SortByDate SortStrategy = "date"

	// DefaultRecentLimit is the number of entries in the activity series.
	DefaultRecentLimit = 10
)

type (
	// SortStrategy selects how the recent-activity series is ordered.
	SortStrategy string

	// CategoryAmount is an expense total for one category.
	CategoryAmount struct {
		Category Category `json:"category"`
		Amount   Money    `json:"amount"`
	}

	// ActivityPoint is one entry of the recent-activity series. Amount is
	// signed: positive for income, negative for expense.
	ActivityPoint struct {
		Date   Date  `json:"date"`
		Amount int64 `json:"amount"`
	}

	SummaryOptions struct {
		RecentSort  SortStrategy
		RecentLimit int
	}

	// Summary is the full set of aggregates derived from one filtered
	// transaction set.
	Summary struct {
		TotalIncome  Money            `json:"totalIncome"`
		TotalExpense Money            `json:"totalExpense"`
		Balance      Money            `json:"balance"`
		ByCategory   []CategoryAmount `json:"byCategory"`
		Recent       []ActivityPoint  `json:"recent"`
	}
)

func (s SortStrategy) Validate() bool {
	return s == SortInsertion || s == SortByDate
}

// Summarize computes totals, the expense category breakdown and the
// recent-activity series for an already month/owner filtered set. It is
// a pure derivation: no state, no I/O.
func Summarize(transactions []Transaction, opts SummaryOptions) Summary {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if !opts.RecentSort.Validate() {
		opts.RecentSort = SortInsertion
	}

	var sum Summary
	index := map[Category]int{}
	for _, t := range transactions {
		switch t.Type {
		case Income:
			sum.TotalIncome.Units += t.Amount.Units
		case Expense:
			sum.TotalExpense.Units += t.Amount.Units
			// First-seen category order.
			if i, ok := index[t.Category]; ok {
				sum.ByCategory[i].Amount.Units += t.Amount.Units
			} else {
				index[t.Category] = len(sum.ByCategory)
				sum.ByCategory = append(sum.ByCategory, CategoryAmount{
					Category: t.Category,
					Amount:   t.Amount,
				})
			}
		}
	}
	sum.Balance.Units = sum.TotalIncome.Units - sum.TotalExpense.Units
	sum.Recent = recentActivity(transactions, opts)
	return sum
}

func recentActivity(transactions []Transaction, opts SummaryOptions) []ActivityPoint {
	ordered := transactions
	if opts.RecentSort == SortByDate {
		ordered = append([]Transaction(nil), transactions...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Date.Before(ordered[j].Date.Time)
		})
	}
	if len(ordered) > opts.RecentLimit {
		ordered = ordered[len(ordered)-opts.RecentLimit:]
	}
	out := make([]ActivityPoint, 0, len(ordered))
	for _, t := range ordered {
		amount := t.Amount.Units
		if t.Type == Expense {
			amount = -amount
		}
		out = append(out, ActivityPoint{Date: t.Date, Amount: amount})
	}
	return out
}
