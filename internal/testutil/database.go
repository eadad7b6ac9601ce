// Package testutil provides shared test helpers: a migrated in-memory ledger and
// a testify mock of the ledger contract.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	seq     int
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// AddTransaction stores a transaction for userID and returns it. Category defaults to Other.
func (db *TestDB) AddTransaction(userID string, kind model.Kind, amount string, category model.Category, date time.Time, description string) model.Transaction {
	db.t.Helper()

	if category == "" {
		category = model.CategoryOther
	}
	db.seq++
	txn := model.Transaction{
		ID:          fmt.Sprintf("txn-%s-%04d", userID, db.seq),
		UserID:      userID,
		Description: description,
		Category:    category,
		Kind:        kind,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
	}
	if err := db.Storage.SaveTransaction(context.Background(), &txn); err != nil {
		db.t.Fatalf("failed to seed transaction: %v", err)
	}
	return txn
}

// SetBudget stores a budget total for userID and month.
func (db *TestDB) SetBudget(userID string, month model.Month, total string) {
	db.t.Helper()

	budget := &model.Budget{
		UserID:      userID,
		Month:       month,
		TotalAmount: decimal.RequireFromString(total),
	}
	if err := db.Storage.SetBudget(context.Background(), budget); err != nil {
		db.t.Fatalf("failed to seed budget: %v", err)
	}
}
