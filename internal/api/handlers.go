package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/cache"
	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/model"
)

const (
	metricDashboard = "dashboard"

	defaultRecentLimit  = 5
	maxRecentLimit      = 100
	defaultHistoryLimit = 12
	maxHistoryLimit     = 365
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, userID string) {
	compute := func() (any, bool) {
		d := s.engine.Dashboard(r.Context(), userID)
		return d, !d.Degraded
	}

	var d engine.Dashboard
	if s.cache == nil {
		v, _ := compute()
		d = v.(engine.Dashboard)
	} else {
		key := cache.Key{UserID: userID, Metric: metricDashboard, Bucket: s.engine.CurrentMonth().String()}
		d = s.cache.GetOrCompute(key, compute).(engine.Dashboard)
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request, userID string) {
	writeJSON(w, http.StatusOK, toBreakdownResponse(s.engine.Breakdown(r.Context(), userID)))
}

func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request, userID string) {
	limit, err := queryLimit(r, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load score history")
		return
	}

	history, err := s.store.GetScoreHistory(r.Context(), userID, limit)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load score history")
		return
	}

	out := make([]scoreResponse, 0, len(history))
	for _, h := range history {
		out = append(out, toScoreResponse(h))
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": out})
}

// handleSnapshot stores the current score. A degraded score is not recorded.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, userID string) {
	b := s.engine.Breakdown(r.Context(), userID)
	if b.Degraded {
		writeError(w, http.StatusServiceUnavailable, "score unavailable")
		return
	}

	snapshot := b.Snapshot(userID)
	if err := s.store.SaveScore(r.Context(), &snapshot); err != nil {
		s.writeFailure(w, r, err, "failed to save score")
		return
	}
	writeJSON(w, http.StatusCreated, toScoreResponse(snapshot))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	limit, err := queryLimit(r, defaultRecentLimit, maxRecentLimit)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load transactions")
		return
	}

	txns, err := s.store.GetRecentTransactions(r.Context(), userID, limit)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": toTransactionResponses(txns)})
}

// handleCreateTransaction stores a transaction, classifying it when no category other
// than Other was given, then runs the alert rules against it.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	txn, err := s.decodeTransaction(w, r, userID)
	if err != nil {
		s.writeFailure(w, r, err, "failed to create transaction")
		return
	}

	if err := s.store.SaveTransaction(r.Context(), &txn); err != nil {
		s.writeFailure(w, r, err, "failed to create transaction")
		return
	}
	s.invalidate(userID)

	alerts := s.alerts.Evaluate(r.Context(), userID, txn)

	writeJSON(w, http.StatusCreated, transactionCreatedResponse{
		Transaction: toTransactionResponse(txn),
		Category:    string(txn.Category),
		Alerts:      toAlertResponses(alerts),
	})
}

func (s *Server) decodeTransaction(w http.ResponseWriter, r *http.Request, userID string) (model.Transaction, error) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return model.Transaction{}, err
	}
	if !req.Amount.Valid {
		return model.Transaction{}, badRequest("amount is required")
	}

	kind, err := model.ParseKind(req.Type)
	if err != nil {
		return model.Transaction{}, err
	}

	var requested model.Category
	if strings.TrimSpace(req.Category) != "" {
		requested, err = model.ParseCategory(req.Category)
		if err != nil {
			return model.Transaction{}, err
		}
	}

	date := s.engine.Now()
	if strings.TrimSpace(req.Date) != "" {
		date, err = parseDate(req.Date, s.engine.Location())
		if err != nil {
			return model.Transaction{}, err
		}
	}

	description := strings.TrimSpace(req.Description)
	return model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Description: description,
		Category:    s.classifier.Resolve(requested, description),
		Kind:        kind,
		Amount:      req.Amount.Decimal,
		Date:        date,
	}, nil
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request, userID string) {
	month, err := queryMonth(r)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load budget")
		return
	}
	if month.IsZero() {
		month = s.engine.CurrentMonth()
	}

	budget, err := s.store.GetBudget(r.Context(), userID, month)
	if err != nil {
		s.writeFailure(w, r, err, "failed to load budget")
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

// handleSetBudget replaces the budget of the requested month, the current one by default.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request, userID string) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeFailure(w, r, err, "failed to save budget")
		return
	}
	if !req.TotalAmount.Valid {
		s.writeFailure(w, r, badRequest("total_amount is required"), "failed to save budget")
		return
	}

	month := s.engine.CurrentMonth()
	if strings.TrimSpace(req.Month) != "" {
		m, err := model.ParseMonth(req.Month)
		if err != nil {
			s.writeFailure(w, r, err, "failed to save budget")
			return
		}
		month = m
	}

	budget := &model.Budget{
		UserID:      userID,
		Month:       month,
		TotalAmount: req.TotalAmount.Decimal,
	}
	if len(req.Categories) > 0 {
		budget.Categories = make(map[model.Category]decimal.Decimal, len(req.Categories))
		for name, limit := range req.Categories {
			cat, err := model.ParseCategory(name)
			if err != nil {
				s.writeFailure(w, r, err, "failed to save budget")
				return
			}
			budget.Categories[cat] = limit
		}
	}

	if err := s.store.SetBudget(r.Context(), budget); err != nil {
		s.writeFailure(w, r, err, "failed to save budget")
		return
	}
	s.invalidate(userID)

	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request, _ string) {
	cats := model.Categories()
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, string(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request, userID string) {
	month, err := queryMonth(r)
	if err != nil {
		s.writeFailure(w, r, err, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(s.engine.MonthlyReport(r.Context(), userID, month)))
}
