package http

import (
	"net/http"

	"foyer/internal/core"
	"foyer/internal/services"
	"foyer/internal/transfer"
)

type setBudgetRequest struct {
	Category core.Category `json:"category"`
	Limit    core.Money    `json:"limit"`
}

type createUserRequest struct {
	Username string        `json:"username"`
	Password string        `json:"password"`
	Role     core.UserRole `json:"role"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.State().Budgets)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.ledger.SetBudget(r.Context(), core.MonthlyBudget{Category: req.Category, Limit: req.Limit}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBudget(r.Context(), core.Category(r.PathValue("category"))); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := s.ledger.State().Users
	out := make([]core.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.ledger.CreateUser(r.Context(), services.NewUser{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="foyer-export.json"`)
	if err := transfer.EncodeJSON(w, s.ledger.Export()); err != nil {
		writeServiceError(w, r, err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.ExportXLSX()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="foyer-export.xlsx"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	doc, err := transfer.DecodeJSON(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid import document")
		return
	}

	if err := s.ledger.Import(r.Context(), doc); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.viewCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
