// Package alert turns ledger events into user notifications.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/recurring"
	"github.com/Veraticus/fti/internal/service"
)

// Alert titles.
const (
	TitleLargeTransaction = "Large Transaction Detected"
	TitleBudgetApproach   = "Budget Alert"
	TitleBudgetExceeded   = "Budget Exceeded"
	TitleRecurring        = "Recurring Transaction Detected"
	TitleGoalReached      = "Goal Reached"
)

// Config holds the alert thresholds.
type Config struct {
	LargeTransactionThreshold decimal.Decimal     `mapstructure:"large_transaction_threshold"`
	Retry                     common.RetryOptions `mapstructure:"-"`
	ApproachPercent           int                 `mapstructure:"approach_percent"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		LargeTransactionThreshold: decimal.NewFromInt(500),
		ApproachPercent:           80,
		Retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
			Multiplier:   2,
		},
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.LargeTransactionThreshold.IsNegative() {
		return fmt.Errorf("%w: alerts: large transaction threshold must not be negative", common.ErrInvalidConfig)
	}
	if c.ApproachPercent < 0 || c.ApproachPercent > 100 {
		return fmt.Errorf("%w: alerts: approach percent must be within [0,100]", common.ErrInvalidConfig)
	}
	return nil
}

// Evaluator checks new ledger entries against the alert rules and appends the
// resulting alerts. It never fails; problems are logged.
type Evaluator struct {
	ledger   service.Ledger
	engine   *engine.Engine
	detector *recurring.Detector
	logger   *slog.Logger
	cfg      Config
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the evaluator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator creates an evaluator that reads usage through eng.
func NewEvaluator(ledger service.Ledger, eng *engine.Engine, cfg Config, opts ...Option) *Evaluator {
	e := &Evaluator{
		ledger:   ledger,
		engine:   eng,
		cfg:      cfg,
		logger:   slog.Default(),
		detector: recurring.NewDetector(recurring.ModeStrict, recurring.WithLocation(eng.Location())),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.Retry.Logger == nil {
		e.cfg.Retry.Logger = e.logger
	}
	return e
}

// Evaluate runs the transaction rules for txn, which must already be stored, and
// returns the alerts it appended.
func (e *Evaluator) Evaluate(ctx context.Context, userID string, txn model.Transaction) []model.Alert {
	settings := e.settings(ctx, userID)
	var alerts []model.Alert

	if settings.LargeTransactionAlert && txn.Amount.GreaterThan(e.cfg.LargeTransactionThreshold) {
		alerts = e.emit(ctx, alerts, userID, TitleLargeTransaction,
			fmt.Sprintf("A %s of $%s was recorded for %s", txn.Kind, txn.Amount.StringFixed(2), txn.Description),
			model.SeverityWarning)
	}

	if settings.BudgetAlert && txn.IsExpense() {
		if title, msg, sev, ok := e.budgetRule(ctx, userID); ok {
			alerts = e.emit(ctx, alerts, userID, title, msg, sev)
		}
	}

	if settings.RecurringAlert && txn.IsExpense() && e.becameRecurring(ctx, userID, txn) {
		alerts = e.emit(ctx, alerts, userID, TitleRecurring,
			fmt.Sprintf("%s for $%s has been charged twice this month", txn.Description, txn.Amount.StringFixed(2)),
			model.SeverityInfo)
	}

	return alerts
}

// EvaluateGoal emits a success alert when an active goal has reached its target.
// The goal itself is not modified.
func (e *Evaluator) EvaluateGoal(ctx context.Context, userID string, goal model.Goal) []model.Alert {
	if goal.Status != model.GoalActive || !goal.Reached() {
		return nil
	}
	if !e.settings(ctx, userID).GoalAlert {
		return nil
	}
	return e.emit(ctx, nil, userID, TitleGoalReached,
		fmt.Sprintf("You've reached your goal %q of $%s", goal.Name, goal.TargetAmount.StringFixed(2)),
		model.SeveritySuccess)
}

func (e *Evaluator) budgetRule(ctx context.Context, userID string) (string, string, model.Severity, bool) {
	usage := e.engine.BudgetUsage(ctx, userID, e.engine.CurrentWindow())
	if usage.Err != nil || usage.Origin != engine.OriginComputed {
		return "", "", "", false
	}

	raw := usage.RawPercent()
	switch {
	case raw >= 100:
		return TitleBudgetExceeded,
			fmt.Sprintf("You've exceeded your monthly budget by %d%%", raw-100),
			model.SeverityDanger, true
	case raw >= e.cfg.ApproachPercent:
		return TitleBudgetApproach,
			fmt.Sprintf("You've used %d%% of your monthly budget", raw),
			model.SeverityWarning, true
	default:
		return "", "", "", false
	}
}

// becameRecurring reports whether txn is the second occurrence of its group this month.
func (e *Evaluator) becameRecurring(ctx context.Context, userID string, txn model.Transaction) bool {
	now := e.engine.Now()
	txns, err := e.ledger.GetTransactionsInWindow(ctx, userID, e.detector.Window(now))
	if err != nil {
		common.LogError(ctx, e.logger, err, "Recurring check failed", common.Fields{"user_id": userID})
		return false
	}
	return e.detector.Occurrences(txns, txn, now) == 2
}

func (e *Evaluator) settings(ctx context.Context, userID string) model.AlertSettings {
	s, err := e.ledger.GetAlertSettings(ctx, userID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return model.DefaultAlertSettings(userID)
	case err != nil:
		common.LogError(ctx, e.logger, err, "Alert settings unavailable, using defaults", common.Fields{"user_id": userID})
		return model.DefaultAlertSettings(userID)
	case s == nil:
		return model.DefaultAlertSettings(userID)
	}
	return *s
}

func (e *Evaluator) emit(ctx context.Context, alerts []model.Alert, userID, title, msg string, sev model.Severity) []model.Alert {
	a := model.Alert{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   msg,
		Severity:  sev,
		CreatedAt: e.engine.Now(),
	}

	err := common.WithRetry(ctx, func() error {
		return e.ledger.AppendAlert(ctx, &a)
	}, e.cfg.Retry)
	if err != nil {
		common.LogError(ctx, e.logger, err, "Failed to append alert", common.Fields{
			"user_id": userID,
			"title":   title,
		})
		return alerts
	}

	common.LogInfo(ctx, e.logger, "Alert raised", common.Fields{
		"user_id":  userID,
		"title":    title,
		"severity": string(sev),
	})
	return append(alerts, a)
}
