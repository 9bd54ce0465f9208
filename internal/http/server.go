// Package http exposes the JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"foyer/internal/cache"
	"foyer/internal/core"
	"foyer/internal/services"
)

type Server struct {
	http.Server
	ledger      *services.LedgerService
	advisor     *services.AdvisorService
	summaryOpts core.SummaryOptions
	rateLimiter *rateLimiter

	// Month views are derived on every dashboard hit; cache them between
	// mutations.
	viewCache *cache.Cache[services.MonthView]

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, advisor *services.AdvisorService, opts core.SummaryOptions) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		advisor:     advisor,
		summaryOpts: opts,
		rateLimiter: newRateLimiter(),
		viewCache:   cache.New[services.MonthView](100, 5*time.Minute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/login", s.withCommon(s.handleLogin))

	mux.HandleFunc("GET /api/dashboard", s.withCommon(s.handleDashboard))

	mux.HandleFunc("GET /api/transactions", s.withCommon(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withCommon(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withCommon(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/templates", s.withCommon(s.handleListTemplates))
	mux.HandleFunc("POST /api/templates", s.withCommon(s.handleCreateTemplate))
	mux.HandleFunc("DELETE /api/templates/{id}", s.withCommon(s.handleDeleteTemplate))
	mux.HandleFunc("POST /api/templates/{id}/check", s.withCommon(s.handleCheckTemplate))
	mux.HandleFunc("POST /api/templates/{id}/uncheck", s.withCommon(s.handleUncheckTemplate))

	mux.HandleFunc("GET /api/budgets", s.withCommon(s.handleListBudgets))
	mux.HandleFunc("PUT /api/budgets", s.withCommon(s.handleSetBudget))
	mux.HandleFunc("DELETE /api/budgets/{category}", s.withCommon(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/users", s.withCommon(s.handleListUsers))
	mux.HandleFunc("POST /api/users", s.withCommon(s.handleCreateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.withCommon(s.handleDeleteUser))

	mux.HandleFunc("GET /api/export", s.withCommon(s.handleExport))
	mux.HandleFunc("GET /api/export.xlsx", s.withCommon(s.handleExportXLSX))
	mux.HandleFunc("POST /api/import", s.withCommon(s.handleImport))

	mux.HandleFunc("GET /api/advice", s.withCommon(s.handleAdvice))

	return s
}

// withCommon adds request logging, rate limiting and security headers.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Mutations are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
