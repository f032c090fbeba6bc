package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"contas/internal/core"
)

type budgetRequest struct {
	Competency string `json:"competency"`
	Category   string `json:"category"`
	Person     string `json:"person"`
	Amount     string `json:"amount"`
}

func (req budgetRequest) toBudget() (core.Budget, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		Competency: core.Competency(req.Competency),
		Category:   strings.TrimSpace(req.Category),
		Person:     core.Person(req.Person),
		Amount:     core.Money{Cents: cents},
	}, nil
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budgets := s.ledger.Budgets()
		if c := r.URL.Query().Get("competency"); c != "" {
			filtered := budgets[:0:0]
			for _, b := range budgets {
				if string(b.Competency) == c {
					filtered = append(filtered, b)
				}
			}
			budgets = filtered
		}
		writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets, "count": len(budgets)})

	case http.MethodPost:
		var req budgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		budget, err := req.toBudget()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		created, err := s.ledger.AddBudget(r.Context(), budget)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodPut:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, errors.New("missing id"))
			return
		}
		var req budgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		budget, err := req.toBudget()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		updated, err := s.ledger.UpdateBudget(r.Context(), id, budget)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, errors.New("missing id"))
			return
		}
		if err := s.ledger.DeleteBudget(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, POST, PUT, DELETE")
	}
}

type creditCardRequest struct {
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	ClosingDay int    `json:"closingDay"`
	DueDay     int    `json:"dueDay"`
	Limit      string `json:"limit"`
}

func (req creditCardRequest) toCard() (core.CreditCard, error) {
	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		return core.CreditCard{}, err
	}
	return core.CreditCard{
		Name:       strings.TrimSpace(req.Name),
		Owner:      core.Person(req.Owner),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		Limit:      core.Money{Cents: cents},
	}, nil
}

func (s *Server) handleCreditCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cards := s.ledger.CreditCards()
		writeJSON(w, http.StatusOK, map[string]any{"cards": cards, "count": len(cards)})

	case http.MethodPost:
		var req creditCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		card, err := req.toCard()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		created, err := s.ledger.AddCreditCard(r.Context(), card)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodPut:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, errors.New("missing id"))
			return
		}
		var req creditCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		card, err := req.toCard()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		updated, err := s.ledger.UpdateCreditCard(r.Context(), id, card)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, errors.New("missing id"))
			return
		}
		if err := s.ledger.DeleteCreditCard(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, POST, PUT, DELETE")
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories := s.ledger.Categories()
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories, "count": len(categories)})

	case http.MethodPost:
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		if err := s.ledger.AddCategory(r.Context(), strings.TrimSpace(req.Name)); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, errors.New("missing name"))
			return
		}
		if err := s.ledger.DeleteCategory(r.Context(), name); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Counts())
}
