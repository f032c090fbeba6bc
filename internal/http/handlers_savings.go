package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"contas/internal/core"
	"contas/internal/report"
)

type savingsGoalRequest struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	Deadline    string `json:"deadline"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
}

func (req savingsGoalRequest) toGoal() (core.SavingsGoal, error) {
	cents, err := core.ParseDecimalToCents(req.Target)
	if err != nil {
		return core.SavingsGoal{}, core.ErrInvalidTargetAmount
	}
	goal := core.SavingsGoal{
		Name:         req.Name,
		TargetAmount: core.Money{Cents: cents},
		Owner:        core.Person(req.Owner),
		Description:  req.Description,
	}
	if req.Deadline != "" {
		deadline, err := parseDate(req.Deadline)
		if err != nil {
			return core.SavingsGoal{}, errors.New("invalid deadline, want YYYY-MM-DD")
		}
		goal.Deadline = deadline
	}
	return goal, nil
}

func (s *Server) handleSavingsGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		goals := s.savings.Goals()
		writeJSON(w, http.StatusOK, map[string]any{"goals": goals, "count": len(goals)})

	case http.MethodPost:
		var req savingsGoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		goal, err := req.toGoal()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		created, err := s.savings.AddGoal(r.Context(), goal)
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
		var req savingsGoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
		goal, err := req.toGoal()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		updated, err := s.savings.UpdateGoal(r.Context(), id, goal)
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
		if err := s.savings.DeleteGoal(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, POST, PUT, DELETE")
	}
}

type depositRequest struct {
	GoalID string `json:"goalId"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, core.ErrDepositNonPositive)
		return
	}
	var date core.Date
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid date, want YYYY-MM-DD"))
			return
		}
	}

	goal, err := s.savings.AddDeposit(r.Context(), req.GoalID, core.Money{Cents: cents}, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	id := r.URL.Query().Get("id")
	goals := s.savings.Goals()

	if id != "" {
		for _, g := range goals {
			if g.ID == id {
				writeJSON(w, http.StatusOK, report.Project(g, goals, s.now()))
				return
			}
		}
		writeError(w, http.StatusNotFound, core.ErrNotFound)
		return
	}

	projections := make(map[string]core.SavingsProjection, len(goals))
	for _, g := range goals {
		projections[g.ID] = report.Project(g, goals, s.now())
	}
	writeJSON(w, http.StatusOK, map[string]any{"projections": projections})
}

func (s *Server) handleSavingsTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	goals := s.savings.Goals()
	writeJSON(w, http.StatusOK, map[string]any{
		"trend":      report.SavingsTrend(goals, s.now()),
		"avgMonthly": report.AvgMonthlySavings(goals, s.now()),
	})
}
