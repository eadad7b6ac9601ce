package testutil

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/service"
)

// MockLedger is a testify mock of service.Ledger.
type MockLedger struct {
	mock.Mock
}

// GetMonthlyIncome implements service.Ledger.
func (m *MockLedger) GetMonthlyIncome(ctx context.Context, userID string, window model.Window) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, window)
	return decimalArg(args, 0), args.Error(1)
}

// GetMonthlyExpenses implements service.Ledger.
func (m *MockLedger) GetMonthlyExpenses(ctx context.Context, userID string, window model.Window) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, window)
	return decimalArg(args, 0), args.Error(1)
}

// GetCategoryBreakdown implements service.Ledger.
func (m *MockLedger) GetCategoryBreakdown(ctx context.Context, userID string, window model.Window) (map[model.Category]decimal.Decimal, error) {
	args := m.Called(ctx, userID, window)
	if v, ok := args.Get(0).(map[model.Category]decimal.Decimal); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetTransactionCount implements service.Ledger.
func (m *MockLedger) GetTransactionCount(ctx context.Context, userID string, window model.Window) (int, error) {
	args := m.Called(ctx, userID, window)
	return args.Int(0), args.Error(1)
}

// GetRecentTransactions implements service.Ledger.
func (m *MockLedger) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if v, ok := args.Get(0).([]model.Transaction); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetTransactionsInWindow implements service.Ledger.
func (m *MockLedger) GetTransactionsInWindow(ctx context.Context, userID string, window model.Window) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, window)
	if v, ok := args.Get(0).([]model.Transaction); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetActiveGoals implements service.Ledger.
func (m *MockLedger) GetActiveGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]model.Goal); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetBudget implements service.Ledger.
func (m *MockLedger) GetBudget(ctx context.Context, userID string, month model.Month) (*model.Budget, error) {
	args := m.Called(ctx, userID, month)
	if v, ok := args.Get(0).(*model.Budget); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetAlertSettings implements service.Ledger.
func (m *MockLedger) GetAlertSettings(ctx context.Context, userID string) (*model.AlertSettings, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).(*model.AlertSettings); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// AppendAlert implements service.Ledger.
func (m *MockLedger) AppendAlert(ctx context.Context, alert *model.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func decimalArg(args mock.Arguments, i int) decimal.Decimal {
	if v, ok := args.Get(i).(decimal.Decimal); ok {
		return v
	}
	return decimal.Zero
}

// Ensure MockLedger implements the Ledger interface.
var _ service.Ledger = (*MockLedger)(nil)
