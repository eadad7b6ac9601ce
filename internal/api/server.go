// Package api exposes the ledger, the FTI engine and the alert evaluator as a JSON
// HTTP API. Every request is scoped to the user named in the X-User-ID header.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/fti/internal/alert"
	"github.com/Veraticus/fti/internal/cache"
	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/service"
)

// UserHeader carries the authenticated user's ID.
const UserHeader = "X-User-ID"

// DefaultSlowRequestThreshold is the duration above which a request is logged as slow.
const DefaultSlowRequestThreshold = time.Second

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store      service.Storage
	engine     *engine.Engine
	alerts     *alert.Evaluator
	classifier *classification.Classifier
	cache      *cache.Cache
	logger     *slog.Logger
	slow       time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSlowRequestThreshold sets the duration above which requests are logged as warnings.
func WithSlowRequestThreshold(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.slow = d
		}
	}
}

// NewServer wires the handlers to their dependencies. The cache may be nil, which
// disables dashboard caching.
func NewServer(store service.Storage, eng *engine.Engine, evaluator *alert.Evaluator,
	classifier *classification.Classifier, c *cache.Cache, opts ...Option,
) *Server {
	s := &Server{
		store:      store,
		engine:     eng,
		alerts:     evaluator,
		classifier: classifier,
		cache:      c,
		logger:     slog.Default(),
		slow:       DefaultSlowRequestThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with logging and panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", s.user(s.handleDashboard))
	mux.HandleFunc("GET /api/fti", s.user(s.handleScore))
	mux.HandleFunc("GET /api/fti/history", s.user(s.handleScoreHistory))
	mux.HandleFunc("POST /api/fti/snapshot", s.user(s.handleSnapshot))

	mux.HandleFunc("GET /api/transactions", s.user(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.user(s.handleCreateTransaction))

	mux.HandleFunc("GET /api/budget", s.user(s.handleGetBudget))
	mux.HandleFunc("POST /api/budget", s.user(s.handleSetBudget))

	mux.HandleFunc("GET /api/categories", s.user(s.handleCategories))
	mux.HandleFunc("GET /api/reports/monthly", s.user(s.handleMonthlyReport))

	mux.HandleFunc("GET /api/goals", s.user(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.user(s.handleCreateGoal))
	mux.HandleFunc("PATCH /api/goals/{id}", s.user(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.user(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/alerts", s.user(s.handleListAlerts))
	mux.HandleFunc("POST /api/alerts/{id}/read", s.user(s.handleMarkAlertRead))
	mux.HandleFunc("GET /api/alerts/settings", s.user(s.handleGetAlertSettings))
	mux.HandleFunc("POST /api/alerts/settings", s.user(s.handleSaveAlertSettings))

	return s.logRequests(s.recoverPanics(mux))
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

// user rejects requests without a user ID.
func (s *Server) user(next userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+UserHeader+" header")
			return
		}
		next(w, r, userID)
	}
}

// invalidate drops every cached metric of userID after a write.
func (s *Server) invalidate(userID string) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		fields := common.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": elapsed.Milliseconds(),
		}
		if elapsed > s.slow {
			s.logger.WarnContext(r.Context(), "Slow request", "method", r.Method, "path", r.URL.Path,
				"status", rec.status, "duration", elapsed.String())
			return
		}
		common.LogDebug(r.Context(), s.logger, "Request handled", fields)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				common.LogError(r.Context(), s.logger, fmt.Errorf("panic: %v", v), "Handler panicked", common.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
