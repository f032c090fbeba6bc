package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contas/internal/kv/memory"
	"contas/internal/services"
	"contas/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo := storage.NewRepository(memory.New())
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("load repository: %v", err)
	}
	ledger := services.NewLedger(repo, nil)
	savings := services.NewSavings(repo, nil)
	if err := ledger.AddCategory(context.Background(), "groceries"); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	s := NewServer(":0", ledger, savings)
	s.now = func() time.Time { return time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListTransactions(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/transactions", `{
		"date": "2025-03-15",
		"type": "expense",
		"paymentMethod": "debit",
		"person": "primary",
		"category": "groceries",
		"description": "weekly shop",
		"value": "45,90"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: %d, body: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/transactions?competency=03/2025", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count: got %d, want 1", resp.Count)
	}
}

func TestCreateTransaction_Installments(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/transactions", `{
		"date": "2025-03-15",
		"type": "expense",
		"paymentMethod": "credit",
		"person": "shared",
		"category": "groceries",
		"description": "appliance",
		"value": "300.00",
		"creditCardId": "card-1",
		"installments": 3
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Transactions []struct {
			InstallmentGroupID string `json:"installmentGroupId"`
			Competency         string `json:"competency"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transactions) != 3 {
		t.Fatalf("expected 3 records, got %d", len(resp.Transactions))
	}
	if resp.Transactions[2].Competency != "05/2025" {
		t.Errorf("last competency: got %s, want 05/2025", resp.Transactions[2].Competency)
	}

	group := resp.Transactions[0].InstallmentGroupID
	rec = do(t, s, http.MethodGet, "/transactions/installments?group="+group, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list group status: %d", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/transactions/installments?group="+group, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete group status: %d", rec.Code)
	}
}

func TestCreateTransaction_Invalid(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad value", `{"date":"2025-03-15","type":"expense","paymentMethod":"cash","person":"primary","category":"groceries","description":"x","value":"abc"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"date":"2025-03-15","type":"expense","paymentMethod":"cash","person":"primary","category":"vacations","description":"x","value":"10.00"}`, http.StatusUnprocessableEntity},
		{"credit without card", `{"date":"2025-03-15","type":"expense","paymentMethod":"credit","person":"primary","category":"groceries","description":"x","value":"10.00"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d, body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestMonthClosureOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/months/close", `{"competency":"03/2025"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status: %d", rec.Code)
	}

	// Creating into the closed month conflicts.
	rec = do(t, s, http.MethodPost, "/transactions", `{"date":"2025-03-15","type":"expense","paymentMethod":"cash","person":"primary","category":"groceries","description":"x","value":"10.00"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("create into closed month: got %d, want 409", rec.Code)
	}

	// Closing twice conflicts.
	rec = do(t, s, http.MethodPost, "/months/close", `{"competency":"03/2025"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("double close: got %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/months/reopen", `{"competency":"03/2025"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reopen status: %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/months/closed", "")
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("closed months after reopen: got %d, want 0", resp.Count)
	}
}

func TestBudgetHealthOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/budgets", `{"competency":"03/2025","category":"groceries","person":"primary","amount":"500.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget status: %d, body: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodPost, "/transactions", `{"date":"2025-03-10","type":"expense","paymentMethod":"cash","person":"primary","category":"groceries","description":"x","value":"475.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status: %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/budgets/health?competency=03/2025", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: %d", rec.Code)
	}
	var score struct {
		Score float64 `json:"score"`
		Label string  `json:"label"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &score); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if score.Score != 95 || score.Label != "attention" {
		t.Errorf("health: %+v", score)
	}
}

func TestCSVRoundTripOverHTTP(t *testing.T) {
	s := newTestServer(t)

	csv := "date;type;paymentMethod;person;category;description;value;competency\n" +
		"15/03/2025;expense;debit;primary;groceries;weekly shop;45,90;03/2025\n" +
		"bad;row;;;;\n"
	rec := do(t, s, http.MethodPost, "/transactions/import", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("import result: %+v", result)
	}

	rec = do(t, s, http.MethodGet, "/transactions/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "weekly shop") {
		t.Errorf("export body missing row: %s", rec.Body.String())
	}
}

func TestSavingsOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/savings", `{"name":"Trip","target":"5000.00","owner":"shared","deadline":"2026-03-20"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var goal struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}

	rec = do(t, s, http.MethodPost, "/savings/deposit", `{"goalId":"`+goal.ID+`","amount":"200.00","date":"2025-03-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit status: %d, body: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/savings/projection?id="+goal.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("projection status: %d", rec.Code)
	}
	var projection struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &projection); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if projection.Status == "" {
		t.Error("projection status should be set")
	}

	rec = do(t, s, http.MethodGet, "/savings/trend", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trend status: %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/transactions", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, "POST") {
		t.Errorf("Allow header: %s", allow)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
	}
}
