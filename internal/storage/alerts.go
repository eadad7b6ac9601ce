package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
)

// AppendAlert stores a new unread alert.
func (s *SQLiteStorage) AppendAlert(ctx context.Context, alert *model.Alert) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAlert(alert); err != nil {
		return err
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, user_id, title, message, severity, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		alert.ID,
		alert.UserID,
		alert.Title,
		alert.Message,
		string(alert.Severity),
		boolToInt(alert.Read),
		toMillis(alert.CreatedAt),
	)
	return classify(err, "failed to append alert")
}

// ListAlerts returns the newest limit alerts of userID.
func (s *SQLiteStorage) ListAlerts(ctx context.Context, userID string, limit int) ([]model.Alert, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, severity, read, created_at
		FROM alerts
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, classify(err, "failed to query alerts")
	}
	defer func() { _ = rows.Close() }()

	alerts := make([]model.Alert, 0)
	for rows.Next() {
		var (
			a         model.Alert
			severity  string
			read      int
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Message, &severity, &read, &createdAt); err != nil {
			return nil, classify(err, "failed to scan alert")
		}
		a.Severity = model.Severity(severity)
		a.Read = read != 0
		a.CreatedAt = fromMillis(createdAt)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flags an alert as read, or returns common.ErrNotFound.
func (s *SQLiteStorage) MarkAlertRead(ctx context.Context, userID, alertID string) error {
	if err := userScope(ctx, userID); err != nil {
		return err
	}
	if err := validateString(alertID, "alertID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE user_id = ? AND id = ?`, userID, alertID)
	if err != nil {
		return classify(err, "failed to mark alert read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetAlertSettings returns the saved settings, or common.ErrNotFound.
func (s *SQLiteStorage) GetAlertSettings(ctx context.Context, userID string) (*model.AlertSettings, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}

	var (
		budget, large, goal, recurring int
		updatedAt                      int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT budget_alert, large_transaction_alert, goal_alert, recurring_alert, updated_at
		FROM alert_settings
		WHERE user_id = ?
	`, userID).Scan(&budget, &large, &goal, &recurring, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, classify(err, "failed to get alert settings")
	}

	return &model.AlertSettings{
		UserID:                userID,
		BudgetAlert:           budget != 0,
		LargeTransactionAlert: large != 0,
		GoalAlert:             goal != 0,
		RecurringAlert:        recurring != 0,
		UpdatedAt:             fromMillis(updatedAt),
	}, nil
}

// SaveAlertSettings replaces the settings of settings.UserID.
func (s *SQLiteStorage) SaveAlertSettings(ctx context.Context, settings *model.AlertSettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if settings == nil {
		return ErrNilParameter
	}
	if err := validateString(settings.UserID, "userID"); err != nil {
		return err
	}

	settings.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alert_settings (user_id, budget_alert, large_transaction_alert, goal_alert, recurring_alert, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			budget_alert = excluded.budget_alert,
			large_transaction_alert = excluded.large_transaction_alert,
			goal_alert = excluded.goal_alert,
			recurring_alert = excluded.recurring_alert,
			updated_at = excluded.updated_at
	`,
		settings.UserID,
		boolToInt(settings.BudgetAlert),
		boolToInt(settings.LargeTransactionAlert),
		boolToInt(settings.GoalAlert),
		boolToInt(settings.RecurringAlert),
		toMillis(settings.UpdatedAt),
	)
	return classify(err, "failed to save alert settings")
}
