package engine

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/model"
)

// Origin tells whether a value was computed from data or fell back to a default.
type Origin string

const (
	// OriginComputed marks a value derived from ledger data.
	OriginComputed Origin = "computed"
	// OriginDefaulted marks a value that replaced missing or degenerate data.
	OriginDefaulted Origin = "defaulted"
)

var hundred = decimal.NewFromInt(100)

// Inputs are everything the scoring model reads for one user and one month.
type Inputs struct {
	Income           decimal.Decimal
	Expenses         decimal.Decimal
	Goals            []model.Goal
	BudgetUsage      Usage
	TransactionCount int
}

// Component is one weighted factor of the score.
type Component struct {
	Name   model.ComponentName
	Origin Origin
	Reason string
	Score  float64
	Weight float64
}

// Weighted returns the component's contribution to the composite.
func (c Component) Weighted() float64 {
	return c.Score * c.Weight / 100
}

// Breakdown is the composite score with its components.
// A degraded breakdown carries the error that prevented computation and scores 0.
type Breakdown struct {
	CalculatedAt time.Time
	Err          error
	Components   []Component
	Score        int
	Degraded     bool
}

// Component returns the named component, if present.
func (b Breakdown) Component(name model.ComponentName) (Component, bool) {
	for _, c := range b.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// Snapshot converts the breakdown into a storable score record.
func (b Breakdown) Snapshot(userID string) model.FTIScore {
	components := make(map[model.ComponentName]float64, len(b.Components))
	for _, c := range b.Components {
		components[c.Name] = c.Score
	}
	return model.FTIScore{
		UserID:       userID,
		Score:        b.Score,
		Components:   components,
		CalculatedAt: b.CalculatedAt,
	}
}

// Compute scores in under cfg. It is a pure function of its arguments.
func Compute(in Inputs, cfg Config) Breakdown {
	components := []Component{
		cashFlowScore(in, cfg),
		spendingControlScore(in, cfg),
		savingsDisciplineScore(in, cfg),
		stabilityScore(in, cfg),
		debtScore(cfg),
		goalProgressScore(in, cfg),
	}

	total := 0.0
	for i := range components {
		components[i].Score = clampPercent(components[i].Score)
		components[i].Weight = cfg.Weights[components[i].Name]
		total += components[i].Weighted()
	}

	return Breakdown{
		Components: components,
		Score:      int(math.Round(clampPercent(total))),
	}
}

// netRate returns (income-expenses)/income*100. Callers guarantee income > 0.
func netRate(in Inputs) float64 {
	return in.Income.Sub(in.Expenses).Div(in.Income).Mul(hundred).InexactFloat64()
}

func cashFlowScore(in Inputs, cfg Config) Component {
	c := Component{Name: model.ComponentCashFlow}
	switch {
	case !in.Income.IsPositive():
		c.Origin, c.Reason, c.Score = OriginDefaulted, "no income recorded", 0
	case in.Expenses.IsZero() && cfg.ZeroExpensePolicy == ZeroExpenseNeutral:
		c.Origin, c.Reason, c.Score = OriginDefaulted, "no expenses recorded", cfg.ZeroExpenseCashFlowScore
	default:
		c.Origin, c.Score = OriginComputed, netRate(in)
	}
	return c
}

func spendingControlScore(in Inputs, cfg Config) Component {
	c := Component{Name: model.ComponentSpendingControl}
	if in.BudgetUsage.Percent > 0 {
		c.Origin = OriginComputed
		c.Score = math.Max(0, 100-float64(in.BudgetUsage.Percent))
		return c
	}
	c.Origin, c.Score = OriginDefaulted, cfg.NeutralSpendingScore
	c.Reason = "no budget usage"
	if in.BudgetUsage.Reason != "" {
		c.Reason = in.BudgetUsage.Reason
	}
	return c
}

func savingsDisciplineScore(in Inputs, cfg Config) Component {
	c := Component{Name: model.ComponentSavingsDiscipline}
	switch {
	case !in.Income.IsPositive():
		c.Origin, c.Reason, c.Score = OriginDefaulted, "no income recorded", 0
	case in.Expenses.IsZero() && cfg.ZeroExpensePolicy == ZeroExpenseNeutral:
		c.Origin, c.Reason, c.Score = OriginDefaulted, "no expenses recorded", cfg.ZeroExpenseSavingsScore
	default:
		c.Origin, c.Score = OriginComputed, netRate(in)*cfg.SavingsMultiplier
	}
	return c
}

func stabilityScore(in Inputs, cfg Config) Component {
	return Component{
		Name:   model.ComponentStability,
		Origin: OriginComputed,
		Score:  math.Min(100, float64(in.TransactionCount)*cfg.StabilityPerTransaction),
	}
}

func debtScore(cfg Config) Component {
	return Component{
		Name:   model.ComponentDebt,
		Origin: OriginDefaulted,
		Reason: "debt tracking not available",
		Score:  cfg.DebtScore,
	}
}

func goalProgressScore(in Inputs, cfg Config) Component {
	c := Component{Name: model.ComponentGoalProgress}

	sum, n := 0.0, 0
	for _, g := range in.Goals {
		if g.Status != model.GoalActive || !g.TargetAmount.IsPositive() {
			continue
		}
		sum += math.Min(100, clampPercent(g.Progress()))
		n++
	}

	if n == 0 {
		c.Origin, c.Reason, c.Score = OriginDefaulted, "no active goals", cfg.NoGoalsScore
		return c
	}

	c.Origin, c.Score = OriginComputed, sum/float64(n)
	return c
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
