package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fti/internal/api"
	"github.com/Veraticus/fti/internal/cache"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the dashboard, score, transaction, budget, goal and alert endpoints.

Every request must carry the X-User-ID header naming the user it acts for.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default: server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appCfg

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	c := cache.New(cfg.Cache)
	defer c.Close()

	handler := api.NewServer(svc.store, svc.engine, svc.alerts, svc.classifier, c,
		api.WithLogger(slog.Default()),
		api.WithSlowRequestThreshold(cfg.Server.SlowRequestThreshold),
	).Handler()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errorChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errorChan)
	}()

	slog.Info("Serving FTI API",
		"addr", cfg.Server.Addr,
		"database", svc.store.Path(),
		"cache", cfg.Cache.Enabled)

	select {
	case err := <-errorChan:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
