package store

import (
	"time"

	"foyer/internal/core"
)

// DefaultState is the documented first-run dataset: two accounts, the
// salary template and two starter budget limits, matching the original
// seed data.
func DefaultState() core.State {
	now := time.Now()
	return core.State{
		Users: []core.User{
			{ID: "admin", Username: "admin", Password: "admin", Role: core.RoleAdmin, CreatedAt: now},
			{ID: "user1", Username: "famille", Password: "123", Role: core.RoleUser, CreatedAt: now},
		},
		Templates: []core.FixedTemplate{
			{
				ID:          "1",
				OwnerID:     "user1",
				Description: "Salaire",
				Amount:      core.Money{Units: 1500000},
				Type:        core.Income,
				Category:    core.CategorySalary,
			},
		},
		Budgets: []core.MonthlyBudget{
			{Category: core.CategoryHousing, Limit: core.Money{Units: 2000000}},
			{Category: core.CategoryFood, Limit: core.Money{Units: 800000}},
		},
	}
}
