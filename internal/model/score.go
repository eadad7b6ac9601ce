package model

import "time"

// ComponentName identifies one of the six FTI components.
type ComponentName string

// FTI components.
const (
	ComponentCashFlow          ComponentName = "cash_flow"
	ComponentSpendingControl   ComponentName = "spending_control"
	ComponentSavingsDiscipline ComponentName = "savings_discipline"
	ComponentStability         ComponentName = "stability"
	ComponentDebt              ComponentName = "debt"
	ComponentGoalProgress      ComponentName = "goal_progress"
)

// ComponentNames lists the components in their canonical order.
func ComponentNames() []ComponentName {
	return []ComponentName{
		ComponentCashFlow,
		ComponentSpendingControl,
		ComponentSavingsDiscipline,
		ComponentStability,
		ComponentDebt,
		ComponentGoalProgress,
	}
}

// IsValid reports whether c is one of the six components.
func (c ComponentName) IsValid() bool {
	for _, known := range ComponentNames() {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the human readable component name.
func (c ComponentName) Label() string {
	switch c {
	case ComponentCashFlow:
		return "Cash Flow Health"
	case ComponentSpendingControl:
		return "Spending Control"
	case ComponentSavingsDiscipline:
		return "Savings Discipline"
	case ComponentStability:
		return "Stability & Consistency"
	case ComponentDebt:
		return "Debt & Obligations"
	case ComponentGoalProgress:
		return "Goal Progress"
	default:
		return string(c)
	}
}

// FTIScore is a stored snapshot of a score computation.
type FTIScore struct {
	CalculatedAt time.Time
	Components   map[ComponentName]float64
	ID           string
	UserID       string
	Score        int
}
