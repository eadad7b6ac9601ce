package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fti/internal/cli"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Show the Financial Trust Index for a user",
		Long: `Compute the current month's Financial Trust Index and its six components.

Components with no data behind them show the default they fell back to.`,
		RunE: runScore,
	}

	cmd.Flags().StringP("user", "u", "", "user ID to score (required)")
	cmd.Flags().Bool("record", false, "Store the computed score in the score history")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser(cmd)
	if err != nil {
		return err
	}
	record, _ := cmd.Flags().GetBool("record")
	ctx := cmd.Context()

	svc, err := newServices(ctx, appCfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	b := svc.engine.Breakdown(ctx, userID)
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBreakdown(b))

	if b.Degraded {
		return fmt.Errorf("score unavailable: %w", b.Err)
	}

	if record {
		snapshot := b.Snapshot(userID)
		if err := svc.store.SaveScore(ctx, &snapshot); err != nil {
			return fmt.Errorf("failed to record score: %w", err)
		}
		slog.Debug("Recorded score", "user_id", userID, "score", snapshot.Score, "id", snapshot.ID)
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded score %d in the history", snapshot.Score)))
	}

	return nil
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show this month's dashboard for a user",
		RunE:  runDashboard,
	}

	cmd.Flags().StringP("user", "u", "", "user ID (required)")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	userID, err := requireUser(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	svc, err := newServices(ctx, appCfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	d := svc.engine.Dashboard(ctx, userID)
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDashboard(d))

	return ctx.Err()
}
