// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/model"
)

// Ledger is the read contract the scoring engine and alert evaluator depend on.
// Every call is scoped to a single user; windows are half-open [start, end).
type Ledger interface {
	GetMonthlyIncome(ctx context.Context, userID string, window model.Window) (decimal.Decimal, error)
	GetMonthlyExpenses(ctx context.Context, userID string, window model.Window) (decimal.Decimal, error)
	GetCategoryBreakdown(ctx context.Context, userID string, window model.Window) (map[model.Category]decimal.Decimal, error)
	GetTransactionCount(ctx context.Context, userID string, window model.Window) (int, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error)
	GetTransactionsInWindow(ctx context.Context, userID string, window model.Window) ([]model.Transaction, error)
	GetActiveGoals(ctx context.Context, userID string) ([]model.Goal, error)

	// GetBudget returns common.ErrNotFound when no budget is set for the month.
	GetBudget(ctx context.Context, userID string, month model.Month) (*model.Budget, error)
	// GetAlertSettings returns common.ErrNotFound when the user never saved settings.
	GetAlertSettings(ctx context.Context, userID string) (*model.AlertSettings, error)

	AppendAlert(ctx context.Context, alert *model.Alert) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Ledger

	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) error

	// Budget operations
	SetBudget(ctx context.Context, budget *model.Budget) error

	// Goal operations
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, userID, goalID string) (*model.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]model.Goal, error)
	UpdateGoalProgress(ctx context.Context, userID, goalID string, current decimal.Decimal) (*model.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error

	// Alert operations
	ListAlerts(ctx context.Context, userID string, limit int) ([]model.Alert, error)
	MarkAlertRead(ctx context.Context, userID, alertID string) error
	SaveAlertSettings(ctx context.Context, settings *model.AlertSettings) error

	// Score history
	SaveScore(ctx context.Context, score *model.FTIScore) error
	GetScoreHistory(ctx context.Context, userID string, limit int) ([]model.FTIScore, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Invalidator drops every cached value derived from a user's data.
// Writers call it after any mutation that changes derived metrics.
type Invalidator interface {
	Invalidate(userID string)
}
