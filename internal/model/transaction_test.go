package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "txn-1",
		UserID:      "alice",
		Description: "Whole Foods",
		Category:    CategoryFood,
		Kind:        KindExpense,
		Amount:      decimal.RequireFromString("82.15"),
		Date:        time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*Transaction)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "zero amount is allowed", mutate: func(tx *Transaction) { tx.Amount = decimal.Zero }},
		{
			name:    "missing user",
			mutate:  func(tx *Transaction) { tx.UserID = " " },
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "missing description",
			mutate:  func(tx *Transaction) { tx.Description = "" },
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) },
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "unknown kind",
			mutate:  func(tx *Transaction) { tx.Kind = "transfer" },
			wantErr: ErrInvalidKind,
		},
		{
			name:    "unknown category",
			mutate:  func(tx *Transaction) { tx.Category = "Groceries" },
			wantErr: ErrUnknownCategory,
		},
		{
			name:    "missing date",
			mutate:  func(tx *Transaction) { tx.Date = time.Time{} },
			wantErr: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidTransaction)
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "income", want: KindIncome},
		{input: " Expense ", want: KindExpense},
		{input: "transfer", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidKind, "input %q", tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "food & dining", want: CategoryFood},
		{input: "  Bills & Utilities ", want: CategoryBills},
		{input: "OTHER", want: CategoryOther},
		{input: "", want: ""},
		{input: "Groceries", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownCategory, "input %q", tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 11)
	assert.Equal(t, CategoryFood, cats[0])
	assert.Equal(t, CategoryOther, cats[len(cats)-1])

	cats[0] = "mutated"
	assert.Equal(t, CategoryFood, Categories()[0], "returns a copy")
}
