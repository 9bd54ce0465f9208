package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foyer/internal/core"
	"foyer/internal/services"
	"foyer/internal/snapshot/memory"
	"foyer/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ledger := services.NewLedgerService(st, nil)
	advisor := services.NewAdvisorService(ledger, nil)
	return NewServer(":0", ledger, advisor, core.SummaryOptions{})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	user := decode[core.User](t, rec)
	if user.Username != "admin" || user.Role != core.RoleAdmin {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Password != "" {
		t.Error("login response leaks password")
	}

	rec = doJSON(t, s, http.MethodPost, "/api/login", map[string]string{"username": "admin", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials: status %d, want 401", rec.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{
		"ownerId":     "user1",
		"date":        "2025-03-10",
		"amount":      1500000,
		"type":        "income",
		"category":    "Salaire",
		"description": "Salaire",
	}
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Transaction](t, rec)
	if created.ID == "" || created.Amount.Units != 1500000 {
		t.Errorf("unexpected transaction: %+v", created)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?owner=user1&month=3&year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	listed := decode[[]core.Transaction](t, rec)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("unexpected list: %+v", listed)
	}

	// Another owner and another month both see nothing.
	if got := decode[[]core.Transaction](t, doJSON(t, s, http.MethodGet, "/api/transactions?owner=admin&month=3&year=2025", nil)); len(got) != 0 {
		t.Errorf("cross-owner leak: %+v", got)
	}
	if got := decode[[]core.Transaction](t, doJSON(t, s, http.MethodGet, "/api/transactions?owner=user1&month=4&year=2025", nil)); len(got) != 0 {
		t.Errorf("cross-month leak: %+v", got)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", rec.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{
		"ownerId":     "user1",
		"date":        "2025-03-10",
		"amount":      0,
		"type":        "expense",
		"category":    "Alimentation",
		"description": "Marché",
	}
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero amount: status %d, want 422", rec.Code)
	}

	body["amount"] = 1000
	body["category"] = "Inconnu"
	rec = doJSON(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown category: status %d, want 422", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader("{broken"))
	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status %d, want 400", rec.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	s := newTestServer(t)

	if rec := doJSON(t, s, http.MethodGet, "/api/dashboard", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing owner: status %d, want 400", rec.Code)
	}

	post := func(amount int64, typ, cat, desc string) {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
			"ownerId": "user1", "date": "2025-03-10", "amount": amount,
			"type": typ, "category": cat, "description": desc,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed transaction: status %d: %s", rec.Code, rec.Body.String())
		}
	}
	post(2000000, "income", "Salaire", "Salaire")
	post(300000, "expense", "Alimentation", "Marché")
	post(200000, "expense", "Transport", "Taxi")

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard?owner=user1&month=3&year=2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", rec.Code)
	}
	view := decode[services.MonthView](t, rec)
	if view.Summary.TotalIncome.Units != 2000000 || view.Summary.TotalExpense.Units != 500000 {
		t.Errorf("unexpected totals: %+v", view.Summary)
	}
	if view.Summary.Balance.Units != 1500000 {
		t.Errorf("balance %d, want 1500000", view.Summary.Balance.Units)
	}
	if len(view.Budgets) != 2 {
		t.Errorf("budgets missing: %+v", view.Budgets)
	}

	// A mutation invalidates the cached view.
	post(100000, "expense", "Loisirs", "Cinéma")
	view = decode[services.MonthView](t, doJSON(t, s, http.MethodGet, "/api/dashboard?owner=user1&month=3&year=2025", nil))
	if view.Summary.TotalExpense.Units != 600000 {
		t.Errorf("stale dashboard after mutation: %+v", view.Summary)
	}
}

func TestTemplateToggleEndpoints(t *testing.T) {
	s := newTestServer(t)
	now := time.Now()

	rec := doJSON(t, s, http.MethodGet, "/api/templates?owner=user1", nil)
	templates := decode[[]core.FixedTemplate](t, rec)
	if len(templates) != 1 {
		t.Fatalf("expected the seeded template, got %+v", templates)
	}
	id := templates[0].ID

	toggle := map[string]any{"ownerId": "user1", "month": int(now.Month()), "year": now.Year()}

	rec = doJSON(t, s, http.MethodPost, "/api/templates/"+id+"/check", toggle)
	if rec.Code != http.StatusCreated {
		t.Fatalf("check: status %d: %s", rec.Code, rec.Body.String())
	}
	posted := decode[core.Transaction](t, rec)
	if posted.Description != "Salaire" {
		t.Errorf("posted transaction: %+v", posted)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/templates/"+id+"/check", toggle); rec.Code != http.StatusConflict {
		t.Errorf("double check: status %d, want 409", rec.Code)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/templates/"+id+"/uncheck", toggle); rec.Code != http.StatusNoContent {
		t.Errorf("uncheck: status %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodPost, "/api/templates/"+id+"/uncheck", toggle); rec.Code != http.StatusConflict {
		t.Errorf("uncheck without match: status %d, want 409", rec.Code)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{"category": "Transport", "limit": 300000})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("set budget: status %d: %s", rec.Code, rec.Body.String())
	}

	budgets := decode[[]core.MonthlyBudget](t, doJSON(t, s, http.MethodGet, "/api/budgets", nil))
	if len(budgets) != 3 {
		t.Errorf("got %d budgets, want 3", len(budgets))
	}

	if rec := doJSON(t, s, http.MethodDelete, "/api/budgets/Transport", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete budget: status %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/api/budgets/Transport", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", rec.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{"username": "tiana", "password": "pw", "role": "user"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: status %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[core.User](t, rec)
	if created.Password != "" {
		t.Error("create user response leaks password")
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/users", map[string]string{"username": "tiana", "password": "x", "role": "user"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate username: status %d, want 409", rec.Code)
	}

	users := decode[[]core.User](t, doJSON(t, s, http.MethodGet, "/api/users", nil))
	if len(users) != 3 {
		t.Errorf("got %d users, want 3", len(users))
	}
	for _, u := range users {
		if u.Password != "" {
			t.Errorf("user list leaks password for %s", u.Username)
		}
	}

	if rec := doJSON(t, s, http.MethodDelete, "/api/users/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete user: status %d", rec.Code)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
		"ownerId": "user1", "date": "2025-03-10", "amount": 50000,
		"type": "expense", "category": "Alimentation", "description": "Marché",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "admin") {
		t.Error("export leaks accounts")
	}
	exported := rec.Body.Bytes()

	// Replace the dataset with an import carrying only budgets.
	rec = doJSON(t, s, http.MethodPost, "/api/import", map[string]any{
		"budgets": []map[string]any{{"category": "Santé", "limit": 150000}},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("import: status %d: %s", rec.Code, rec.Body.String())
	}
	budgets := decode[[]core.MonthlyBudget](t, doJSON(t, s, http.MethodGet, "/api/budgets", nil))
	if len(budgets) != 1 || budgets[0].Category != core.CategoryHealth {
		t.Errorf("import did not replace budgets: %+v", budgets)
	}
	// Transactions were absent from the document and survive.
	listed := decode[[]core.Transaction](t, doJSON(t, s, http.MethodGet, "/api/transactions?owner=user1&month=3&year=2025", nil))
	if len(listed) != 1 {
		t.Errorf("import clobbered transactions: %+v", listed)
	}

	// Re-import the original export restores the budgets.
	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(exported))
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("re-import: status %d: %s", rr.Code, rr.Body.String())
	}
	budgets = decode[[]core.MonthlyBudget](t, doJSON(t, s, http.MethodGet, "/api/budgets", nil))
	if len(budgets) != 2 {
		t.Errorf("re-import did not restore budgets: %+v", budgets)
	}
}

func TestExportXLSXEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/export.xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook")
	}
}

func TestAdviceEndpoint(t *testing.T) {
	s := newTestServer(t)

	// Below the minimum data threshold.
	rec := doJSON(t, s, http.MethodGet, "/api/advice?owner=user1", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}

	for i := 0; i < 3; i++ {
		doJSON(t, s, http.MethodPost, "/api/transactions", map[string]any{
			"ownerId": "user1", "date": "2025-03-10", "amount": 10000,
			"type": "expense", "category": "Alimentation", "description": fmt.Sprintf("dépense %d", i),
		})
	}

	// No advisor configured, so the fallback message comes back.
	rec = doJSON(t, s, http.MethodGet, "/api/advice?owner=user1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	reply := decode[map[string]string](t, rec)
	if reply["advice"] != services.FallbackAdvice {
		t.Errorf("advice %q, want fallback", reply["advice"])
	}
}
