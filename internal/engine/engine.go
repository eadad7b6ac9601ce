// Package engine computes the Financial Trust Index and the derived dashboard metrics
// from a user's ledger.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/recurring"
	"github.com/Veraticus/fti/internal/service"
)

// Engine scores users against a ledger. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	ledger   service.Ledger
	detector *recurring.Detector
	logger   *slog.Logger
	now      func() time.Time
	cfg      Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, which decides the current month.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine with the default configuration.
func New(ledger service.Ledger, opts ...Option) *Engine {
	return NewWithConfig(ledger, DefaultConfig(), opts...)
}

// NewWithConfig creates an engine with a custom configuration.
func NewWithConfig(ledger service.Ledger, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		ledger: ledger,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.detector = recurring.NewDetector(cfg.RecurringMode,
		recurring.WithLocation(cfg.location()),
		recurring.WithLookback(cfg.RecurringLookback))
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Detector returns the recurring detector configured for this engine.
func (e *Engine) Detector() *recurring.Detector {
	return e.detector
}

// Location returns the time zone that decides month boundaries.
func (e *Engine) Location() *time.Location {
	return e.cfg.location()
}

// Now returns the engine clock's current time in the configured location.
func (e *Engine) Now() time.Time {
	return e.now().In(e.cfg.location())
}

// CurrentMonth returns the calendar month the engine treats as current.
func (e *Engine) CurrentMonth() model.Month {
	return model.MonthOf(e.Now())
}

// CurrentWindow returns the current month as a half-open window.
func (e *Engine) CurrentWindow() model.Window {
	return e.CurrentMonth().Window(e.cfg.location())
}

// Score returns the composite FTI for userID in [0,100]. It never fails:
// when the ledger cannot answer the score is 0 and the cause is logged.
func (e *Engine) Score(ctx context.Context, userID string) int {
	return e.Breakdown(ctx, userID).Score
}

// Breakdown computes the composite score together with its six components.
func (e *Engine) Breakdown(ctx context.Context, userID string) Breakdown {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	now := e.Now()

	in, err := e.Inputs(ctx, userID)
	if err != nil {
		common.LogError(ctx, e.logger, err, "FTI score calculation failed", common.Fields{"user_id": userID})
		return Breakdown{CalculatedAt: now, Degraded: true, Err: err}
	}

	b := Compute(in, e.cfg)
	b.CalculatedAt = now

	common.LogDebug(ctx, e.logger, "FTI score calculated", common.Fields{
		"user_id": userID,
		"score":   b.Score,
	})

	return b
}

// Inputs gathers the current month's scoring inputs. The ledger reads are independent
// and run concurrently; any failure aborts the whole set.
func (e *Engine) Inputs(ctx context.Context, userID string) (Inputs, error) {
	window := e.CurrentWindow()

	var (
		in     Inputs
		budget *model.Budget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, err := e.ledger.GetMonthlyIncome(gctx, userID, window)
		if err != nil {
			return fmt.Errorf("income: %w", err)
		}
		in.Income = income
		return nil
	})
	g.Go(func() error {
		expenses, err := e.ledger.GetMonthlyExpenses(gctx, userID, window)
		if err != nil {
			return fmt.Errorf("expenses: %w", err)
		}
		in.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		count, err := e.ledger.GetTransactionCount(gctx, userID, window)
		if err != nil {
			return fmt.Errorf("transaction count: %w", err)
		}
		in.TransactionCount = count
		return nil
	})
	g.Go(func() error {
		goals, err := e.ledger.GetActiveGoals(gctx, userID)
		if err != nil {
			return fmt.Errorf("active goals: %w", err)
		}
		in.Goals = goals
		return nil
	})
	g.Go(func() error {
		b, err := e.currentBudget(gctx, userID)
		if err != nil {
			return fmt.Errorf("budget: %w", err)
		}
		budget = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	if err := ctx.Err(); err != nil {
		return Inputs{}, err
	}

	in.BudgetUsage = UsageOf(budget, in.Expenses)
	if in.Income.IsNegative() {
		in.Income = decimal.Zero
	}
	if in.Expenses.IsNegative() {
		in.Expenses = decimal.Zero
	}

	return in, nil
}
