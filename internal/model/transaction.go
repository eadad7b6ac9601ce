// Package model defines the domain records shared by the ledger, the scoring engine and the API.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors for domain records.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidKind        = errors.New("invalid transaction kind")
)

// Kind is the direction of money for a transaction.
type Kind string

const (
	// KindIncome represents money coming in.
	KindIncome Kind = "income"
	// KindExpense represents money going out.
	KindExpense Kind = "expense"
)

// ParseKind validates a transaction kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Transaction is a single ledger entry. Transactions are never updated once stored.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	ID          string
	UserID      string
	Description string
	Category    Category
	Kind        Kind
	Amount      decimal.Decimal
}

// IsExpense reports whether the transaction spends money.
func (t *Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// Validate checks the invariants a transaction must satisfy before it is stored.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return fmt.Errorf("%w: missing user", ErrInvalidTransaction)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if err := CheckAmount(t.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if t.Kind != KindIncome && t.Kind != KindExpense {
		return fmt.Errorf("%w: %w: %q", ErrInvalidTransaction, ErrInvalidKind, t.Kind)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidTransaction, ErrUnknownCategory, t.Category)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}
