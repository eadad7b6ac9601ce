// Package storage provides the SQLite persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fti/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateWindow(w model.Window) error {
	if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
		return fmt.Errorf("%w: [%v, %v)", ErrInvalidDateRange, w.Start, w.End)
	}
	return nil
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}

// validateTransaction checks a transaction before it is written.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", model.ErrInvalidTransaction)
	}
	return txn.Validate()
}

func validateBudget(b *model.Budget) error {
	if b == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	return b.Validate()
}

func validateGoal(g *model.Goal) error {
	if g == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if g.ID == "" {
		return fmt.Errorf("%w: missing ID", model.ErrInvalidGoal)
	}
	return g.Validate()
}

func validateAlert(a *model.Alert) error {
	if a == nil {
		return fmt.Errorf("%w: alert", ErrNilParameter)
	}
	if err := validateString(a.ID, "alert ID"); err != nil {
		return err
	}
	if err := validateString(a.UserID, "alert user"); err != nil {
		return err
	}
	return validateString(a.Title, "alert title")
}

// userScope validates the common (ctx, userID) pair every read takes.
func userScope(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return validateString(userID, "userID")
}
