package engine

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
)

// Usage is the share of the current month's budget consumed by expenses.
type Usage struct {
	Err       error
	Origin    Origin
	Reason    string
	Raw       float64 // unrounded, unclamped percentage
	Percent   int     // rounded and clamped to [0,100]
	HasBudget bool
}

// RawPercent returns the unclamped percentage rounded to an integer.
func (u Usage) RawPercent() int {
	return int(math.Round(u.Raw))
}

// UsageOf computes budget usage for expenses against budget, which may be nil.
func UsageOf(budget *model.Budget, expenses decimal.Decimal) Usage {
	if budget == nil {
		return Usage{Origin: OriginDefaulted, Reason: "no budget set"}
	}
	if !budget.TotalAmount.IsPositive() {
		return Usage{Origin: OriginDefaulted, Reason: "budget total is zero", HasBudget: true}
	}

	raw := expenses.Div(budget.TotalAmount).Mul(hundred).InexactFloat64()
	return Usage{
		Origin:    OriginComputed,
		Raw:       raw,
		Percent:   int(math.Round(clampPercent(raw))),
		HasBudget: true,
	}
}

// BudgetUsage reports expenses within window against the budget of the current month.
// The budget is always the current month's, whatever window is asked for.
// Failures resolve to zero usage with the error attached.
func (e *Engine) BudgetUsage(ctx context.Context, userID string, window model.Window) Usage {
	usage, err := e.budgetUsage(ctx, userID, window)
	if err != nil {
		common.LogError(ctx, e.logger, err, "Budget usage calculation failed", common.Fields{"user_id": userID})
		return Usage{Origin: OriginDefaulted, Reason: "ledger unavailable", Err: err}
	}
	return usage
}

func (e *Engine) budgetUsage(ctx context.Context, userID string, window model.Window) (Usage, error) {
	budget, err := e.currentBudget(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	if budget == nil || !budget.TotalAmount.IsPositive() {
		return UsageOf(budget, decimal.Zero), nil
	}

	expenses, err := e.ledger.GetMonthlyExpenses(ctx, userID, window)
	if err != nil {
		return Usage{}, err
	}
	return UsageOf(budget, expenses), nil
}

// currentBudget returns nil without error when no budget is set this month.
func (e *Engine) currentBudget(ctx context.Context, userID string) (*model.Budget, error) {
	budget, err := e.ledger.GetBudget(ctx, userID, e.CurrentMonth())
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil //nolint:nilnil // no budget is a valid state
	}
	if err != nil {
		return nil, err
	}
	return budget, nil
}
