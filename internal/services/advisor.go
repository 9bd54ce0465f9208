package services

import (
	"context"
	"errors"
	"log/slog"

	"foyer/internal/advisor"
	"foyer/internal/core"
)

// FallbackAdvice is returned when the advisory collaborator fails or is
// not configured. Same wording the UI always showed on failure.
const FallbackAdvice = "Désolé, je ne peux pas analyser vos données pour le moment. Veuillez réessayer plus tard."

// AdvisorService guards the external budget analysis behind the
// minimum-data gate and degrades to a fixed message on failure.
type AdvisorService struct {
	ledger  *LedgerService
	advisor advisor.Advisor
}

func NewAdvisorService(ledger *LedgerService, adv advisor.Advisor) *AdvisorService {
	return &AdvisorService{ledger: ledger, advisor: adv}
}

// Advise analyzes the owner's transactions against the shared budgets.
// Returns core.ErrNotEnoughData below the gate; collaborator failures
// yield the fallback message, never an error.
func (s *AdvisorService) Advise(ctx context.Context, ownerID string) (string, error) {
	state := s.ledger.State()

	var owned []core.Transaction
	for _, t := range state.Transactions {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}

	input, err := core.NewAdvisoryInput(owned, state.Budgets)
	if err != nil {
		return "", err
	}

	if s.advisor == nil {
		slog.WarnContext(ctx, "no advisor configured, returning fallback advice")
		return FallbackAdvice, nil
	}

	text, err := s.advisor.Analyze(ctx, input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		slog.ErrorContext(ctx, "budget analysis failed", "owner", ownerID, "error", err)
		return FallbackAdvice, nil
	}
	return text, nil
}
