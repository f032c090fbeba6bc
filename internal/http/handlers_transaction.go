package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"contas/internal/core"
	"contas/internal/csvio"
	applog "contas/internal/log"
	"contas/internal/report"
)

// transactionRequest is the JSON body for recording a purchase. Value
// is a decimal string; dates are YYYY-MM-DD.
type transactionRequest struct {
	Date          string `json:"date"`
	Type          string `json:"type"`
	PaymentMethod string `json:"paymentMethod"`
	Person        string `json:"person"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Value         string `json:"value"`
	Competency    string `json:"competency"`
	CreditCardID  string `json:"creditCardId"`
	Installments  int    `json:"installments"`
}

func (req transactionRequest) toDraft() (core.PurchaseDraft, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return core.PurchaseDraft{}, errors.New("invalid date, want YYYY-MM-DD")
	}
	cents, err := core.ParseDecimalToCents(req.Value)
	if err != nil {
		return core.PurchaseDraft{}, err
	}

	draft := core.PurchaseDraft{
		Date:          date,
		Type:          core.TransactionType(req.Type),
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
		Person:        core.Person(req.Person),
		Category:      strings.TrimSpace(req.Category),
		Description:   strings.TrimSpace(req.Description),
		Value:         core.Money{Cents: cents},
		CreditCardID:  req.CreditCardID,
		Installments:  req.Installments,
	}
	if draft.Installments == 0 {
		draft.Installments = 1
	}
	if req.Competency != "" {
		c, err := core.ParseCompetency(req.Competency)
		if err != nil {
			return core.PurchaseDraft{}, err
		}
		draft.Competency = c
	}
	return draft, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodDelete:
		s.deleteTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := report.Filter{
		Competency:    q.Get("competency"),
		Type:          q.Get("type"),
		Category:      q.Get("category"),
		Person:        q.Get("person"),
		PaymentMethod: q.Get("paymentMethod"),
	}
	txs := filter.Apply(s.ledger.Transactions())
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	records, err := s.ledger.CreateTransaction(r.Context(), draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transactions": records})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing id"))
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInstallments(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	if group == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing group"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		members := s.ledger.ListInstallments(group)
		writeJSON(w, http.StatusOK, map[string]any{
			"installments": members,
			"count":        len(members),
		})
	case http.MethodDelete:
		if err := s.ledger.DeleteInstallmentGroup(r.Context(), group); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

// handleImportCSV reads a CSV body and records every well-formed row
// through the normal create path, so closure gating and category
// checks still apply. Rows rejected at either stage are counted, not
// fatal.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	result, err := csvio.ParseTransactions(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	imported := 0
	skipped := result.Skipped
	for _, draft := range result.Drafts {
		if _, err := s.ledger.CreateTransaction(r.Context(), draft); err != nil {
			slog.WarnContext(r.Context(), "Skipped csv row", "description", draft.Description, "error", err)
			skipped++
			continue
		}
		imported++
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Csv import finished",
		applog.FieldCount, imported, "skipped", skipped)

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": imported,
		"skipped":  skipped,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := csvio.WriteTransactions(w, s.ledger.Transactions()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to export csv", "error", err)
	}
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: parsedTime}, nil
}
