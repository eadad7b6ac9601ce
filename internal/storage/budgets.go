package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
)

// SetBudget creates or replaces the budget for the budget's user and month. On a
// replace the original creation time is kept and copied back into budget.
func (s *SQLiteStorage) SetBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	categories, err := encodeCategoryLimits(budget)
	if err != nil {
		return err
	}

	now := fromMillis(toMillis(time.Now()))
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = now
	}
	budget.UpdatedAt = now

	var createdAt int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, month, total_cents, categories, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, month) DO UPDATE SET
			total_cents = excluded.total_cents,
			categories = excluded.categories,
			updated_at = excluded.updated_at
		RETURNING created_at
	`,
		budget.UserID,
		budget.Month.String(),
		toCents(budget.TotalAmount),
		categories,
		toMillis(budget.CreatedAt),
		toMillis(budget.UpdatedAt),
	).Scan(&createdAt)
	if err != nil {
		return classify(err, "failed to save budget")
	}

	budget.CreatedAt = fromMillis(createdAt)
	return nil
}

// GetBudget returns the budget for month, or common.ErrNotFound.
func (s *SQLiteStorage) GetBudget(ctx context.Context, userID string, month model.Month) (*model.Budget, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, fmt.Errorf("%w: month", ErrEmptyString)
	}

	var (
		totalCents           int64
		categories           sql.NullString
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT total_cents, categories, created_at, updated_at
		FROM budgets
		WHERE user_id = ? AND month = ?
	`, userID, month.String()).Scan(&totalCents, &categories, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, classify(err, "failed to get budget")
	}

	budget := &model.Budget{
		UserID:      userID,
		Month:       month,
		TotalAmount: fromCents(totalCents),
		CreatedAt:   fromMillis(createdAt),
		UpdatedAt:   fromMillis(updatedAt),
		Categories:  make(map[model.Category]decimal.Decimal),
	}

	if categories.Valid && categories.String != "" {
		var limits map[model.Category]int64
		if err := json.Unmarshal([]byte(categories.String), &limits); err != nil {
			return nil, fmt.Errorf("failed to parse budget categories: %w", err)
		}
		for cat, cents := range limits {
			budget.Categories[cat] = fromCents(cents)
		}
	}

	return budget, nil
}

func encodeCategoryLimits(budget *model.Budget) (sql.NullString, error) {
	if len(budget.Categories) == 0 {
		return sql.NullString{}, nil
	}
	limits := make(map[model.Category]int64, len(budget.Categories))
	for cat, limit := range budget.Categories {
		limits[cat] = toCents(limit)
	}
	data, err := json.Marshal(limits)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode budget categories: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
