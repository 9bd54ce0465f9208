// Package advisor defines the port for the external budget analysis
// collaborator.
package advisor

import (
	"context"

	"foyer/internal/core"
)

// Advisor produces a natural-language assessment of the family's
// finances from raw transactions and budget limits.
type Advisor interface {
	Analyze(ctx context.Context, input core.AdvisoryInput) (string, error)
}
