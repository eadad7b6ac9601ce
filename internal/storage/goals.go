package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
)

const goalColumns = `id, user_id, name, target_cents, current_cents, target_date, status, created_at, updated_at`

// CreateGoal stores a new goal. An empty status defaults to active.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if goal != nil && goal.Status == "" {
		goal.Status = model.GoalActive
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	now := time.Now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		goal.ID,
		goal.UserID,
		goal.Name,
		toCents(goal.TargetAmount),
		toCents(goal.CurrentAmount),
		nullableMillis(goal.TargetDate),
		string(goal.Status),
		toMillis(goal.CreatedAt),
		toMillis(goal.UpdatedAt),
	)
	return classify(err, "failed to create goal")
}

// GetGoal returns one of userID's goals, or common.ErrNotFound.
func (s *SQLiteStorage) GetGoal(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	return s.getGoalTx(ctx, s.db, userID, goalID)
}

func (s *SQLiteStorage) getGoalTx(ctx context.Context, q queryable, userID, goalID string) (*model.Goal, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ? AND id = ?
	`, userID, goalID)

	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, classify(err, "failed to get goal")
	}
	return &goal, nil
}

// ListGoals returns every goal of userID, oldest first.
func (s *SQLiteStorage) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
}

// GetActiveGoals returns the goals of userID that are still active.
func (s *SQLiteStorage) GetActiveGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	return s.queryGoals(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ? AND status = ?
		ORDER BY created_at, id
	`, userID, string(model.GoalActive))
}

// UpdateGoalProgress sets the current amount of a goal and returns the updated goal.
// The status is left unchanged.
func (s *SQLiteStorage) UpdateGoalProgress(ctx context.Context, userID, goalID string, current decimal.Decimal) (*model.Goal, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	if err := model.CheckAmount(current); err != nil {
		return nil, fmt.Errorf("%w: current: %w", model.ErrInvalidGoal, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE goals SET current_cents = ?, updated_at = ?
		WHERE user_id = ? AND id = ?
	`, toCents(current), toMillis(time.Now().UTC()), userID, goalID)
	if err != nil {
		return nil, classify(err, "failed to update goal")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrNotFound
	}

	goal, err := s.getGoalTx(ctx, tx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err, "failed to commit goal update")
	}
	return goal, nil
}

// DeleteGoal removes a goal, or returns common.ErrNotFound.
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if err := userScope(ctx, userID); err != nil {
		return err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, goalID)
	if err != nil {
		return classify(err, "failed to delete goal")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) queryGoals(ctx context.Context, query string, args ...any) ([]model.Goal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "failed to query goals")
	}
	defer func() { _ = rows.Close() }()

	goals := make([]model.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (model.Goal, error) {
	var (
		goal                      model.Goal
		targetCents, currentCents int64
		targetDate                sql.NullInt64
		status                    string
		createdAt, updatedAt      int64
	)
	if err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Name,
		&targetCents,
		&currentCents,
		&targetDate,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Goal{}, err
	}

	goal.TargetAmount = fromCents(targetCents)
	goal.CurrentAmount = fromCents(currentCents)
	goal.TargetDate = fromNullableMillis(targetDate)
	goal.Status = model.GoalStatus(status)
	goal.CreatedAt = fromMillis(createdAt)
	goal.UpdatedAt = fromMillis(updatedAt)
	return goal, nil
}
