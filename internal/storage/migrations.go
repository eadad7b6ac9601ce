package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ledger schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					date INTEGER NOT NULL,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
					amount_cents INTEGER NOT NULL CHECK (amount_cents >= 0),
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user_kind_date ON transactions(user_id, kind, date)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					user_id TEXT NOT NULL,
					month TEXT NOT NULL,
					total_cents INTEGER NOT NULL CHECK (total_cents >= 0),
					categories TEXT,
					created_at INTEGER NOT NULL,
					updated_at INTEGER NOT NULL,
					PRIMARY KEY (user_id, month)
				)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					target_cents INTEGER NOT NULL CHECK (target_cents > 0),
					current_cents INTEGER NOT NULL DEFAULT 0 CHECK (current_cents >= 0),
					target_date INTEGER,
					status TEXT NOT NULL DEFAULT 'active',
					created_at INTEGER NOT NULL,
					updated_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_goals_user_status ON goals(user_id, status)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add alerts and alert settings",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS alerts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					message TEXT NOT NULL,
					severity TEXT NOT NULL,
					read INTEGER NOT NULL DEFAULT 0,
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_alerts_user_created ON alerts(user_id, created_at DESC)`,

				`CREATE TABLE IF NOT EXISTS alert_settings (
					user_id TEXT PRIMARY KEY,
					budget_alert INTEGER NOT NULL DEFAULT 1,
					large_transaction_alert INTEGER NOT NULL DEFAULT 1,
					goal_alert INTEGER NOT NULL DEFAULT 1,
					recurring_alert INTEGER NOT NULL DEFAULT 1,
					updated_at INTEGER NOT NULL
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add FTI score history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS fti_scores (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
					components TEXT NOT NULL,
					calculated_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_fti_scores_user_calculated ON fti_scores(user_id, calculated_at DESC)`,
			})
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
