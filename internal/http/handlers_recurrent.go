package http

import (
	"net/http"
	"time"

	"foyer/internal/core"
	"foyer/internal/services"
)

type createTemplateRequest struct {
	OwnerID     string         `json:"ownerId"`
	Description string         `json:"description"`
	Amount      core.Money     `json:"amount"`
	Type        core.EntryType `json:"type"`
	Category    core.Category  `json:"category"`
}

type toggleTemplateRequest struct {
	OwnerID string `json:"ownerId"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	writeJSON(w, http.StatusOK, core.FilterOwner(s.ledger.State().Templates, owner))
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.ledger.CreateTemplate(r.Context(), services.NewTemplate{
		OwnerID:     req.OwnerID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeToggle(w, r)
	if !ok {
		return
	}

	posted, err := s.ledger.CheckTemplate(r.Context(), req.OwnerID, r.PathValue("id"), time.Month(req.Month), req.Year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	writeJSON(w, http.StatusCreated, posted)
}

func (s *Server) handleUncheckTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeToggle(w, r)
	if !ok {
		return
	}

	if err := s.ledger.UncheckTemplate(r.Context(), req.OwnerID, r.PathValue("id"), time.Month(req.Month), req.Year); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeToggle(w http.ResponseWriter, r *http.Request) (toggleTemplateRequest, bool) {
	var req toggleTemplateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "ownerId is required")
		return req, false
	}
	if req.Month < 1 || req.Month > 12 || req.Year == 0 {
		writeError(w, http.StatusBadRequest, "month and year are required")
		return req, false
	}
	return req, true
}
