// Package http exposes the ledger over a JSON API. Routes are plain
// net/http handlers on a ServeMux; entity ids travel as query
// parameters.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/services"
)

type Server struct {
	http.Server

	ledger  *services.Ledger
	savings *services.Savings
	now     func() time.Time

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once

	// Report responses are cached briefly; any successful mutation
	// bumps the generation, orphaning every cached key.
	historicalCache *cache.LRUCache[[]core.HistoricalPoint]
	trendCache      *cache.LRUCache[[]core.TrendPoint]
	cacheManager    *cache.Manager
	generation      atomic.Int64
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.Ledger, savings *services.Savings) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		savings:     savings,
		now:         time.Now,
		rateLimiter: newRateLimiter(mutationRateLimit),

		historicalCache: cache.NewLRUCache[[]core.HistoricalPoint](100, time.Minute),
		trendCache:      cache.NewLRUCache[[]core.TrendPoint](100, time.Minute),
		cacheManager:    cache.NewManager(),
	}
	s.cacheManager.Register(s.historicalCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/transactions/installments", s.withMiddleware(s.handleInstallments))
	mux.HandleFunc("/transactions/import", s.withMiddleware(s.handleImportCSV))
	mux.HandleFunc("/transactions/export", s.withMiddleware(s.handleExportCSV))

	mux.HandleFunc("/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/reports/historical", s.withMiddleware(s.handleHistorical))
	mux.HandleFunc("/reports/burndown", s.withMiddleware(s.handleBurndown))
	mux.HandleFunc("/reports/trend", s.withMiddleware(s.handleCategoryTrend))

	mux.HandleFunc("/budgets", s.withMiddleware(s.handleBudgets))
	mux.HandleFunc("/budgets/report", s.withMiddleware(s.handleBudgetReport))
	mux.HandleFunc("/budgets/health", s.withMiddleware(s.handleBudgetHealth))

	mux.HandleFunc("/months/closed", s.withMiddleware(s.handleClosedMonths))
	mux.HandleFunc("/months/close", s.withMiddleware(s.handleCloseMonth))
	mux.HandleFunc("/months/reopen", s.withMiddleware(s.handleReopenMonth))

	mux.HandleFunc("/cards", s.withMiddleware(s.handleCreditCards))
	mux.HandleFunc("/categories", s.withMiddleware(s.handleCategories))

	mux.HandleFunc("/savings", s.withMiddleware(s.handleSavingsGoals))
	mux.HandleFunc("/savings/deposit", s.withMiddleware(s.handleDeposit))
	mux.HandleFunc("/savings/projection", s.withMiddleware(s.handleProjection))
	mux.HandleFunc("/savings/trend", s.withMiddleware(s.handleSavingsTrend))

	mux.HandleFunc("/stats", s.withMiddleware(s.handleStats))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request
// logging to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
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
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		// Mutating requests are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		if r.Method != http.MethodGet && rw.statusCode < 400 {
			s.generation.Add(1)
		}

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeServiceError maps domain sentinel errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, core.ErrMonthClosed), errors.Is(err, core.ErrMonthAlreadyClosed):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, core.ErrInvalidCompetency):
		writeError(w, http.StatusBadRequest, err)
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrEmptyDescription,
		core.ErrEmptyCategory,
		core.ErrEmptyName,
		core.ErrInvalidType,
		core.ErrInvalidPayment,
		core.ErrInvalidPerson,
		core.ErrMissingCreditCard,
		core.ErrInvalidInstallment,
		core.ErrInvalidDay,
		core.ErrUnknownCategory,
		core.ErrDepositNonPositive,
		core.ErrInvalidTargetAmount,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
