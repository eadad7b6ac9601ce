package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fti/internal/alert"
	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/config"
	"github.com/Veraticus/fti/internal/engine"
	"github.com/Veraticus/fti/internal/storage"
)

// services bundles everything the commands share.
type services struct {
	store      *storage.SQLiteStorage
	engine     *engine.Engine
	alerts     *alert.Evaluator
	classifier *classification.Classifier
}

func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// openStore opens the configured database and brings its schema up to date.
func openStore(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func newServices(ctx context.Context, cfg *config.Config) (*services, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	classifier, err := classification.NewClassifier(cfg.Categories)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	eng := engine.NewWithConfig(store, cfg.Engine, engine.WithLogger(slog.Default()))

	return &services{
		store:      store,
		engine:     eng,
		alerts:     alert.NewEvaluator(store, eng, cfg.Alerts, alert.WithLogger(slog.Default())),
		classifier: classifier,
	}, nil
}

// requireUser reads the --user flag shared by the per-user commands.
func requireUser(cmd *cobra.Command) (string, error) {
	userID, _ := cmd.Flags().GetString("user")
	if userID == "" {
		return "", fmt.Errorf("--user is required")
	}
	return userID, nil
}
