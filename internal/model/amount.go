package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts the ledger cannot store exactly.
var ErrInvalidAmount = errors.New("invalid amount")

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

var maxCents = decimal.NewFromInt(math.MaxInt64)

// CheckAmount reports whether d is a non-negative amount that fits in an int64
// count of cents without rounding.
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d.String(), AmountScale)
	}
	if d.Shift(AmountScale).GreaterThan(maxCents) {
		return fmt.Errorf("%w: %s is too large", ErrInvalidAmount, d.String())
	}
	return nil
}
