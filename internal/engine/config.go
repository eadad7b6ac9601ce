package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/recurring"
)

// ZeroExpensePolicy decides how income with no recorded expenses is scored.
type ZeroExpensePolicy string

const (
	// ZeroExpenseNeutral scores cash flow and savings with fixed neutral values.
	ZeroExpenseNeutral ZeroExpensePolicy = "neutral"
	// ZeroExpenseFormula applies the regular formulas, which yields full marks.
	ZeroExpenseFormula ZeroExpensePolicy = "formula"
)

// Config holds the tunable parameters of the scoring model.
type Config struct {
	Location                 *time.Location                  `mapstructure:"-"`
	Weights                  map[model.ComponentName]float64 `mapstructure:"weights"`
	ZeroExpensePolicy        ZeroExpensePolicy               `mapstructure:"zero_expense_policy"`
	RecurringMode            recurring.Mode                  `mapstructure:"recurring_mode"`
	Timeout                  time.Duration                   `mapstructure:"timeout"`
	RecurringLookback        time.Duration                   `mapstructure:"recurring_lookback"`
	DebtScore                float64                         `mapstructure:"debt_score"`
	NeutralSpendingScore     float64                         `mapstructure:"neutral_spending_score"`
	NoGoalsScore             float64                         `mapstructure:"no_goals_score"`
	ZeroExpenseCashFlowScore float64                         `mapstructure:"zero_expense_cash_flow_score"`
	ZeroExpenseSavingsScore  float64                         `mapstructure:"zero_expense_savings_score"`
	SavingsMultiplier        float64                         `mapstructure:"savings_multiplier"`
	StabilityPerTransaction  float64                         `mapstructure:"stability_per_transaction"`
	RecentLimit              int                             `mapstructure:"recent_limit"`
}

// DefaultWeights returns the component weights in percent.
func DefaultWeights() map[model.ComponentName]float64 {
	return map[model.ComponentName]float64{
		model.ComponentCashFlow:          25,
		model.ComponentSpendingControl:   20,
		model.ComponentSavingsDiscipline: 20,
		model.ComponentStability:         15,
		model.ComponentDebt:              10,
		model.ComponentGoalProgress:      10,
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Location:                 time.UTC,
		Weights:                  DefaultWeights(),
		ZeroExpensePolicy:        ZeroExpenseNeutral,
		RecurringMode:            recurring.ModeStrict,
		RecurringLookback:        recurring.DefaultLookback,
		DebtScore:                90,
		NeutralSpendingScore:     70,
		NoGoalsScore:             60,
		ZeroExpenseCashFlowScore: 50,
		ZeroExpenseSavingsScore:  30,
		SavingsMultiplier:        5,
		StabilityPerTransaction:  5,
		RecentLimit:              5,
	}
}

// Validate checks that the configuration describes a usable model.
func (c Config) Validate() error {
	var errs []error

	total := 0.0
	for _, name := range model.ComponentNames() {
		w, ok := c.Weights[name]
		if !ok {
			errs = append(errs, fmt.Errorf("missing weight for %s", name))
			continue
		}
		if w < 0 {
			errs = append(errs, fmt.Errorf("weight for %s is negative", name))
		}
		total += w
	}
	for name := range c.Weights {
		if !name.IsValid() {
			errs = append(errs, fmt.Errorf("unknown component %q", name))
		}
	}
	if math.Abs(total-100) > 1e-9 {
		errs = append(errs, fmt.Errorf("weights sum to %g, want 100", total))
	}

	for label, v := range map[string]float64{
		"debt_score":                   c.DebtScore,
		"neutral_spending_score":       c.NeutralSpendingScore,
		"no_goals_score":               c.NoGoalsScore,
		"zero_expense_cash_flow_score": c.ZeroExpenseCashFlowScore,
		"zero_expense_savings_score":   c.ZeroExpenseSavingsScore,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Errorf("%s must be within [0,100], got %g", label, v))
		}
	}

	if c.SavingsMultiplier < 0 || c.StabilityPerTransaction < 0 {
		errs = append(errs, errors.New("multipliers must not be negative"))
	}

	switch c.ZeroExpensePolicy {
	case ZeroExpenseNeutral, ZeroExpenseFormula:
	default:
		errs = append(errs, fmt.Errorf("unknown zero expense policy %q", c.ZeroExpensePolicy))
	}

	if _, err := recurring.ParseMode(string(c.RecurringMode)); err != nil {
		errs = append(errs, err)
	}

	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: engine: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
