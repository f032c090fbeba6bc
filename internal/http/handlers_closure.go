package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"contas/internal/core"
)

type competencyRequest struct {
	Competency string `json:"competency"`
}

func (s *Server) handleClosedMonths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	months := s.ledger.ClosedMonths()
	writeJSON(w, http.StatusOK, map[string]any{
		"closedMonths": months,
		"count":        len(months),
	})
}

func (s *Server) handleCloseMonth(w http.ResponseWriter, r *http.Request) {
	competency, ok := decodeCompetency(w, r)
	if !ok {
		return
	}
	if err := s.ledger.CloseMonth(r.Context(), competency); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"competency": competency, "closed": true})
}

func (s *Server) handleReopenMonth(w http.ResponseWriter, r *http.Request) {
	competency, ok := decodeCompetency(w, r)
	if !ok {
		return
	}
	if err := s.ledger.ReopenMonth(r.Context(), competency); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"competency": competency, "closed": false})
}

func decodeCompetency(w http.ResponseWriter, r *http.Request) (core.Competency, bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return "", false
	}
	var req competencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return "", false
	}
	competency, err := core.ParseCompetency(req.Competency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return competency, true
}
