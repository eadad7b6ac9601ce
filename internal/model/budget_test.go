package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudgetValidate(t *testing.T) {
	march := Month{Year: 2024, Month: time.March}

	tests := []struct {
		budget  Budget
		name    string
		wantErr bool
	}{
		{
			name:   "valid",
			budget: Budget{UserID: "alice", Month: march, TotalAmount: decimal.NewFromInt(2000)},
		},
		{
			name: "category limits",
			budget: Budget{UserID: "alice", Month: march, TotalAmount: decimal.NewFromInt(2000),
				Categories: map[Category]decimal.Decimal{CategoryFood: decimal.NewFromInt(400)}},
		},
		{
			name:    "missing month",
			budget:  Budget{UserID: "alice", TotalAmount: decimal.NewFromInt(2000)},
			wantErr: true,
		},
		{
			name:    "negative total",
			budget:  Budget{UserID: "alice", Month: march, TotalAmount: decimal.NewFromInt(-1)},
			wantErr: true,
		},
		{
			name: "unknown category",
			budget: Budget{UserID: "alice", Month: march,
				Categories: map[Category]decimal.Decimal{"Groceries": decimal.NewFromInt(400)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.budget.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBudget)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		current  string
		progress float64
		reached  bool
	}{
		{name: "halfway", target: "1000", current: "500", progress: 50},
		{name: "exactly reached", target: "1000", current: "1000", progress: 100, reached: true},
		{name: "over target is not capped", target: "1000", current: "1500", progress: 150, reached: true},
		{name: "zero target", target: "0", current: "100", progress: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Goal{
				TargetAmount:  decimal.RequireFromString(tt.target),
				CurrentAmount: decimal.RequireFromString(tt.current),
			}
			assert.InDelta(t, tt.progress, g.Progress(), 0.001)
			assert.Equal(t, tt.reached, g.Reached())
		})
	}
}

func TestGoalValidate(t *testing.T) {
	valid := func() Goal {
		return Goal{
			UserID:       "alice",
			Name:         "Emergency fund",
			Status:       GoalActive,
			TargetAmount: decimal.NewFromInt(5000),
		}
	}

	tests := []struct {
		mutate  func(*Goal)
		name    string
		wantErr bool
	}{
		{name: "valid", mutate: func(*Goal) {}},
		{name: "missing name", mutate: func(g *Goal) { g.Name = "" }, wantErr: true},
		{name: "zero target", mutate: func(g *Goal) { g.TargetAmount = decimal.Zero }, wantErr: true},
		{name: "negative current", mutate: func(g *Goal) { g.CurrentAmount = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "unknown status", mutate: func(g *Goal) { g.Status = "paused" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid()
			tt.mutate(&g)
			err := g.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidGoal)
				return
			}
			assert.NoError(t, err)
		})
	}
}
