package http

import (
	"net/http"

	"foyer/internal/core"
	"foyer/internal/services"
)

type createTransactionRequest struct {
	OwnerID     string         `json:"ownerId"`
	Date        core.Date      `json:"date"`
	Amount      core.Money     `json:"amount"`
	Type        core.EntryType `json:"type"`
	Category    core.Category  `json:"category"`
	Description string         `json:"description"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}
	year, month := parseYearMonth(r)

	scoped := core.FilterMonth(s.ledger.State().Transactions, owner, month, year)
	writeJSON(w, http.StatusOK, scoped)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), services.NewTransaction{
		OwnerID:     req.OwnerID,
		Date:        req.Date,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
