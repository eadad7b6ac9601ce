package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/model"
)

const transactionColumns = `id, user_id, date, description, category, kind, amount_cents, created_at`

// SaveTransaction stores a new ledger entry. Entries are immutable; saving an
// existing ID returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.UserID,
		toMillis(txn.Date),
		txn.Description,
		string(txn.Category),
		string(txn.Kind),
		toCents(txn.Amount),
		toMillis(txn.CreatedAt),
	)
	return classify(err, "failed to save transaction")
}

// GetMonthlyIncome sums income within window.
func (s *SQLiteStorage) GetMonthlyIncome(ctx context.Context, userID string, window model.Window) (decimal.Decimal, error) {
	return s.sumByKind(ctx, userID, window, model.KindIncome)
}

// GetMonthlyExpenses sums expenses within window.
func (s *SQLiteStorage) GetMonthlyExpenses(ctx context.Context, userID string, window model.Window) (decimal.Decimal, error) {
	return s.sumByKind(ctx, userID, window, model.KindExpense)
}

func (s *SQLiteStorage) sumByKind(ctx context.Context, userID string, window model.Window, kind model.Kind) (decimal.Decimal, error) {
	if err := userScope(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	if err := validateWindow(window); err != nil {
		return decimal.Zero, err
	}

	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND date >= ? AND date < ?
	`, userID, string(kind), toMillis(window.Start), toMillis(window.End)).Scan(&cents)
	if err != nil {
		return decimal.Zero, classify(err, fmt.Sprintf("failed to sum %s", kind))
	}
	return fromCents(cents), nil
}

// GetCategoryBreakdown sums expenses per category within window.
func (s *SQLiteStorage) GetCategoryBreakdown(ctx context.Context, userID string, window model.Window) (map[model.Category]decimal.Decimal, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM transactions
		WHERE user_id = ? AND kind = ? AND date >= ? AND date < ?
		GROUP BY category
	`, userID, string(model.KindExpense), toMillis(window.Start), toMillis(window.End))
	if err != nil {
		return nil, classify(err, "failed to query category breakdown")
	}
	defer func() { _ = rows.Close() }()

	breakdown := make(map[model.Category]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan category breakdown: %w", err)
		}
		breakdown[model.Category(category)] = fromCents(cents)
	}

	return breakdown, rows.Err()
}

// GetTransactionCount counts transactions of either kind within window.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context, userID string, window model.Window) (int, error) {
	if err := userScope(ctx, userID); err != nil {
		return 0, err
	}
	if err := validateWindow(window); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date < ?
	`, userID, toMillis(window.Start), toMillis(window.End)).Scan(&count)
	if err != nil {
		return 0, classify(err, "failed to count transactions")
	}
	return count, nil
}

// GetRecentTransactions returns the newest transactions first.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC, id
		LIMIT ?
	`, userID, limit)
}

// GetTransactionsInWindow returns the transactions within window in date order.
func (s *SQLiteStorage) GetTransactionsInWindow(ctx context.Context, userID string, window model.Window) ([]model.Transaction, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date, created_at, id
	`, userID, toMillis(window.Start), toMillis(window.End))
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "failed to query transactions")
	}
	defer func() { _ = rows.Close() }()

	transactions := make([]model.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		txn             model.Transaction
		date, createdAt int64
		category, kind  string
		amountCents     int64
	)
	if err := rows.Scan(
		&txn.ID,
		&txn.UserID,
		&date,
		&txn.Description,
		&category,
		&kind,
		&amountCents,
		&createdAt,
	); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Date = fromMillis(date)
	txn.CreatedAt = fromMillis(createdAt)
	txn.Category = model.Category(category)
	txn.Kind = model.Kind(kind)
	txn.Amount = fromCents(amountCents)
	return txn, nil
}
