package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/model"
)

func TestScoreBand(t *testing.T) {
	tests := []struct {
		want  string
		score int
	}{
		{score: 100, want: "Excellent"},
		{score: 80, want: "Excellent"},
		{score: 79, want: "Good"},
		{score: 60, want: "Good"},
		{score: 40, want: "Fair"},
		{score: 39, want: "Poor"},
		{score: 0, want: "Poor"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreBand(tt.score), "score %d", tt.score)
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		filled  int
	}{
		{name: "empty", percent: 0, width: 10, filled: 0},
		{name: "half", percent: 50, width: 10, filled: 5},
		{name: "full", percent: 100, width: 10, filled: 10},
		{name: "clamped above", percent: 250, width: 10, filled: 10},
		{name: "clamped below", percent: -20, width: 10, filled: 0},
		{name: "rounded", percent: 76, width: 20, filled: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderBar(tt.percent, tt.width)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, tt.width-tt.filled, strings.Count(bar, "░"))
		})
	}

	assert.Empty(t, RenderBar(50, 0))
}

func TestRenderBreakdown(t *testing.T) {
	b := engine.Compute(engine.Inputs{}, engine.DefaultConfig())

	out := RenderBreakdown(b)
	assert.Contains(t, out, "Financial Trust Index")
	assert.Contains(t, out, "29 / 100")
	assert.Contains(t, out, "Poor")
	for _, name := range model.ComponentNames() {
		assert.Contains(t, out, name.Label())
	}
	assert.Contains(t, out, "default:")
}

func TestRenderBreakdown_Degraded(t *testing.T) {
	out := RenderBreakdown(engine.Breakdown{Degraded: true, Err: errors.New("database is locked")})
	assert.Contains(t, out, "Score unavailable")
	assert.NotContains(t, out, "/ 100")
}

func TestRenderDashboard(t *testing.T) {
	d := engine.Dashboard{
		Month:           model.Month{Year: 2024, Month: time.March},
		FTIScore:        72,
		MonthlyIncome:   decimal.NewFromInt(3000),
		MonthlyExpenses: decimal.NewFromInt(1550),
		NetFlow:         decimal.NewFromInt(1450),
		AvgDailySpend:   decimal.NewFromInt(50),
		BudgetUsed:      78,
		TopCategory:     string(model.CategoryBills),
		RecentTransactions: []model.Transaction{
			{
				Date:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
				Description: "Groceries",
				Category:    model.CategoryFood,
				Kind:        model.KindExpense,
				Amount:      decimal.RequireFromString("350"),
			},
		},
		TotalTransactions: 3,
		RecurringCount:    1,
	}

	out := RenderDashboard(d)
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "72 (Good)")
	assert.Contains(t, out, "$3000.00")
	assert.Contains(t, out, "$1450.00")
	assert.Contains(t, out, "78%")
	assert.Contains(t, out, "Bills & Utilities")
	assert.Contains(t, out, "-$350.00")
	assert.NotContains(t, out, "Some metrics")

	d.Degraded = true
	assert.Contains(t, RenderDashboard(d), "Some metrics could not be computed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
