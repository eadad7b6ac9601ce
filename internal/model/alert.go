package model

import "time"

// Severity is the display level of an alert.
type Severity string

// Alert severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Alert is an append-only notification. Only Read ever changes after creation.
type Alert struct {
	CreatedAt time.Time
	ID        string
	UserID    string
	Title     string
	Message   string
	Severity  Severity
	Read      bool
}

// AlertSettings toggles the alert rules for one user.
type AlertSettings struct {
	UpdatedAt             time.Time
	UserID                string
	BudgetAlert           bool
	LargeTransactionAlert bool
	GoalAlert             bool
	RecurringAlert        bool
}

// DefaultAlertSettings returns settings with every rule enabled.
func DefaultAlertSettings(userID string) AlertSettings {
	return AlertSettings{
		UserID:                userID,
		BudgetAlert:           true,
		LargeTransactionAlert: true,
		GoalAlert:             true,
		RecurringAlert:        true,
	}
}
