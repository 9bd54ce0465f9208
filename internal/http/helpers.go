package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foyer/internal/core"
	"foyer/internal/services"
	"foyer/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrDuplicateID), errors.Is(err, store.ErrUsernameTaken),
		errors.Is(err, services.ErrAlreadyChecked), errors.Is(err, services.ErrNoMatch):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyOwner), errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrEmptyUsername), errors.Is(err, core.ErrInvalidRole),
		errors.Is(err, core.ErrNotEnoughData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a size-limited JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// parseYearMonth extracts year and month from query parameters, falling
// back to the current period.
func parseYearMonth(r *http.Request) (year int, month time.Month) {
	now := time.Now()
	year = now.Year()
	month = now.Month()

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}

	return year, month
}

// ownerID reads the owner query parameter, required on scoped reads.
func ownerID(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("owner"))
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
