package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"contas/internal/core"
	"contas/internal/report"
)

const defaultMonthsBack = 6

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

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
		"totals":     report.Totals(txs),
		"byCategory": report.SumByCategory(txs),
		"byPerson":   report.SumByPerson(txs),
	})
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	months := parseMonths(r, defaultMonthsBack)
	key := fmt.Sprintf("historical:%d:%d", s.generation.Load(), months)
	series, ok := s.historicalCache.Get(key)
	if !ok {
		series = report.HistoricalSeries(s.ledger.Transactions(), s.ledger.Budgets(), s.now(), months)
		s.historicalCache.Set(key, series)
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (s *Server) handleBurndown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	competency, err := core.ParseCompetency(r.URL.Query().Get("competency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	points := report.Burndown(s.ledger.Transactions(), s.ledger.Budgets(), competency)
	writeJSON(w, http.StatusOK, map[string]any{"burndown": points})
}

func (s *Server) handleCategoryTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	months := parseMonths(r, defaultMonthsBack)
	var categories []string
	if raw := r.URL.Query().Get("categories"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}
	key := fmt.Sprintf("trend:%d:%d:%s", s.generation.Load(), months, strings.Join(categories, ","))
	trend, ok := s.trendCache.Get(key)
	if !ok {
		trend = report.CategoryTrend(s.ledger.Transactions(), s.now(), months, categories)
		s.trendCache.Set(key, trend)
	}
	writeJSON(w, http.StatusOK, map[string]any{"trend": trend})
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	competency, err := core.ParseCompetency(r.URL.Query().Get("competency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reports := report.BudgetReports(s.ledger.Transactions(), s.ledger.Budgets(), competency)
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleBudgetHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	competency, err := core.ParseCompetency(r.URL.Query().Get("competency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	score := report.HealthScore(s.ledger.Transactions(), s.ledger.Budgets(), competency)
	writeJSON(w, http.StatusOK, score)
}

func parseMonths(r *http.Request, fallback int) int {
	v := r.URL.Query().Get("months")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 60 {
		return fallback
	}
	return n
}
