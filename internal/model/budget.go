package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors for budgets and goals.
var (
	ErrInvalidBudget = errors.New("invalid budget")
	ErrInvalidGoal   = errors.New("invalid goal")
)

// Budget is the spending allowance for one user and one calendar month.
type Budget struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Categories  map[Category]decimal.Decimal
	UserID      string
	Month       Month
	TotalAmount decimal.Decimal
}

// Validate checks the budget before it is stored.
func (b *Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return fmt.Errorf("%w: missing user", ErrInvalidBudget)
	}
	if b.Month.IsZero() {
		return fmt.Errorf("%w: missing month", ErrInvalidBudget)
	}
	if err := CheckAmount(b.TotalAmount); err != nil {
		return fmt.Errorf("%w: total: %w", ErrInvalidBudget, err)
	}
	for cat, limit := range b.Categories {
		if !cat.IsValid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidBudget, ErrUnknownCategory, cat)
		}
		if err := CheckAmount(limit); err != nil {
			return fmt.Errorf("%w: limit for %s: %w", ErrInvalidBudget, cat, err)
		}
	}
	return nil
}

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

// Goal statuses.
const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}

// Goal is a savings target owned by a user.
type Goal struct {
	TargetDate    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	UserID        string
	Name          string
	Status        GoalStatus
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
}

// Progress returns current/target as a percentage without any cap.
// A non-positive target yields zero.
func (g *Goal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Reached reports whether the goal has hit its target.
func (g *Goal) Reached() bool {
	return g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Validate checks the goal before it is stored.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return fmt.Errorf("%w: missing user", ErrInvalidGoal)
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidGoal)
	}
	if !g.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target must be positive", ErrInvalidGoal)
	}
	if err := CheckAmount(g.TargetAmount); err != nil {
		return fmt.Errorf("%w: target: %w", ErrInvalidGoal, err)
	}
	if err := CheckAmount(g.CurrentAmount); err != nil {
		return fmt.Errorf("%w: current: %w", ErrInvalidGoal, err)
	}
	if !g.Status.IsValid() {
		return fmt.Errorf("%w: status %q", ErrInvalidGoal, g.Status)
	}
	return nil
}
