package engine

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
)

// NoTopCategory is reported when the window has no expenses.
const NoTopCategory = "None"

// Dashboard is the current month's summary for one user.
type Dashboard struct {
	Month              model.Month
	TopCategory        string
	RecentTransactions []model.Transaction
	MonthlyIncome      decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	NetFlow            decimal.Decimal
	AvgDailySpend      decimal.Decimal
	FTIScore           int
	BudgetUsed         int
	TotalTransactions  int
	RecurringCount     int
	Degraded           bool
}

// MonthlyReport summarizes one calendar month.
type MonthlyReport struct {
	TopCategories    map[model.Category]decimal.Decimal
	Month            model.Month
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	FTIScore         int
	TransactionCount int
	Degraded         bool
}

// Dashboard assembles the current month's metrics. Each metric falls back to its
// zero value on failure; Degraded reports whether any did.
func (e *Engine) Dashboard(ctx context.Context, userID string) Dashboard {
	window := e.CurrentWindow()
	d := Dashboard{Month: e.CurrentMonth()}

	fail := func(metric string, err error) {
		d.Degraded = true
		common.LogError(ctx, e.logger, err, "Dashboard metric unavailable", common.Fields{
			"user_id": userID,
			"metric":  metric,
		})
	}

	b := e.Breakdown(ctx, userID)
	d.FTIScore = b.Score
	d.Degraded = b.Degraded

	if v, err := e.ledger.GetMonthlyIncome(ctx, userID, window); err != nil {
		fail("monthly_income", err)
	} else {
		d.MonthlyIncome = v
	}

	if v, err := e.ledger.GetMonthlyExpenses(ctx, userID, window); err != nil {
		fail("monthly_expenses", err)
	} else {
		d.MonthlyExpenses = v
	}
	d.NetFlow = d.MonthlyIncome.Sub(d.MonthlyExpenses)

	usage := e.BudgetUsage(ctx, userID, window)
	if usage.Err != nil {
		d.Degraded = true
	}
	d.BudgetUsed = usage.Percent

	if v, err := e.ledger.GetRecentTransactions(ctx, userID, e.recentLimit()); err != nil {
		fail("recent_transactions", err)
		d.RecentTransactions = []model.Transaction{}
	} else {
		d.RecentTransactions = v
	}

	if v, err := e.ledger.GetTransactionCount(ctx, userID, window); err != nil {
		fail("total_transactions", err)
	} else {
		d.TotalTransactions = v
	}

	d.AvgDailySpend = AverageDailySpend(d.MonthlyExpenses, window)

	if breakdown, err := e.ledger.GetCategoryBreakdown(ctx, userID, window); err != nil {
		fail("top_category", err)
		d.TopCategory = NoTopCategory
	} else {
		d.TopCategory = TopCategory(breakdown)
	}

	if v, err := e.recurringCount(ctx, userID); err != nil {
		fail("recurring_count", err)
	} else {
		d.RecurringCount = v
	}

	return d
}

// MonthlyReport summarizes month, or the current month when month is zero.
// The FTI is always the current one.
func (e *Engine) MonthlyReport(ctx context.Context, userID string, month model.Month) MonthlyReport {
	if month.IsZero() {
		month = e.CurrentMonth()
	}
	window := month.Window(e.cfg.location())

	r := MonthlyReport{
		Month:         month,
		TopCategories: map[model.Category]decimal.Decimal{},
	}

	fail := func(metric string, err error) {
		r.Degraded = true
		common.LogError(ctx, e.logger, err, "Report metric unavailable", common.Fields{
			"user_id": userID,
			"metric":  metric,
			"month":   month.String(),
		})
	}

	b := e.Breakdown(ctx, userID)
	r.FTIScore = b.Score
	r.Degraded = b.Degraded

	if v, err := e.ledger.GetMonthlyIncome(ctx, userID, window); err != nil {
		fail("total_income", err)
	} else {
		r.TotalIncome = v
	}
	if v, err := e.ledger.GetMonthlyExpenses(ctx, userID, window); err != nil {
		fail("total_expenses", err)
	} else {
		r.TotalExpenses = v
	}
	if v, err := e.ledger.GetTransactionCount(ctx, userID, window); err != nil {
		fail("transaction_count", err)
	} else {
		r.TransactionCount = v
	}
	if v, err := e.ledger.GetCategoryBreakdown(ctx, userID, window); err != nil {
		fail("top_categories", err)
	} else {
		r.TopCategories = v
	}

	return r
}

// RecurringCount returns the number of recurring groups for userID, or 0 on failure.
func (e *Engine) RecurringCount(ctx context.Context, userID string) int {
	n, err := e.recurringCount(ctx, userID)
	if err != nil {
		common.LogError(ctx, e.logger, err, "Recurring detection failed", common.Fields{"user_id": userID})
		return 0
	}
	return n
}

func (e *Engine) recurringCount(ctx context.Context, userID string) (int, error) {
	now := e.Now()
	txns, err := e.ledger.GetTransactionsInWindow(ctx, userID, e.detector.Window(now))
	if err != nil {
		return 0, err
	}
	return e.detector.Count(txns, now), nil
}

func (e *Engine) recentLimit() int {
	if e.cfg.RecentLimit <= 0 {
		return 5
	}
	return e.cfg.RecentLimit
}

// AverageDailySpend divides expenses evenly over the days of window, rounded to cents.
func AverageDailySpend(expenses decimal.Decimal, window model.Window) decimal.Decimal {
	days := window.Days()
	if days <= 0 {
		return decimal.Zero
	}
	return expenses.Div(decimal.NewFromInt(int64(days))).Round(2)
}

// TopCategory returns the category with the largest amount. Ties go to the
// alphabetically first category.
func TopCategory(breakdown map[model.Category]decimal.Decimal) string {
	if len(breakdown) == 0 {
		return NoTopCategory
	}

	cats := make([]model.Category, 0, len(breakdown))
	for c := range breakdown {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		ai, aj := breakdown[cats[i]], breakdown[cats[j]]
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return cats[i] < cats[j]
	})

	return string(cats[0])
}
