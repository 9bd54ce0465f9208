package http

import (
	"fmt"
	"net/http"
	"time"
)

func viewCacheKey(owner string, month time.Month, year int) string {
	return fmt.Sprintf("%s|%d-%02d", owner, year, int(month))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}
	year, month := parseYearMonth(r)

	key := viewCacheKey(owner, month, year)
	if view, ok := s.viewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	view := s.ledger.ViewMonth(owner, month, year, s.summaryOpts)
	s.viewCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	advice, err := s.advisor.Advise(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}
