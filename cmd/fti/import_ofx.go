package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/fti/internal/alert"
	"github.com/Veraticus/fti/internal/cli"
	"github.com/Veraticus/fti/internal/common"
	"github.com/Veraticus/fti/internal/model"
	"github.com/Veraticus/fti/internal/ofx"
	"github.com/Veraticus/fti/internal/service"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Re-importing a file is safe: transactions already in the ledger are skipped.

Examples:
  # Import single file
  fti import-ofx --user alice ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory
  fti import-ofx --user alice ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("user", "u", "", "user ID to import for (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().Bool("alerts", false, "Evaluate alert rules for each imported transaction")

	return cmd
}

// importSummary counts what happened to each parsed transaction.
type importSummary struct {
	Imported   int
	Duplicates int
	Failed     int
	Alerts     int
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	userID, err := requireUser(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	withAlerts, _ := cmd.Flags().GetBool("alerts")
	out := cmd.OutOrStdout()

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	interrupts := cli.NewInterruptHandler(out)
	ctx := interrupts.HandleInterrupts(cmd.Context(), "Import",
		"Transactions saved so far are kept; rerun the import to pick up the rest")

	svc, err := newServices(ctx, appCfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	parser := ofx.NewParser(svc.classifier, ofx.WithLogger(slog.Default()))
	txns := parseFiles(ctx, parser, files, userID)
	if len(txns) == 0 {
		slog.Warn("No transactions found in any file", "files", len(files))
		return nil
	}

	if dryRun {
		writePreview(out, txns)
		slog.Info("Dry run complete - no data saved", "transactions", len(txns))
		return nil
	}

	var evaluator *alert.Evaluator
	if withAlerts {
		evaluator = svc.alerts
	}

	bar := newImportBar(out, len(txns))
	summary := importTransactions(ctx, svc.store, evaluator, txns, func() {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	})

	if interrupts.WasInterrupted() {
		return ctx.Err()
	}

	fmt.Fprintln(out, renderSummary(summary))

	if summary.Failed > 0 {
		return fmt.Errorf("%d transactions could not be saved", summary.Failed)
	}
	return nil
}

// collectFiles expands glob patterns, keeping literal paths that exist.
func collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseFiles parses every file, logging and skipping the ones that fail.
func parseFiles(ctx context.Context, parser *ofx.Parser, files []string, userID string) []model.Transaction {
	var all []model.Transaction
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		txns, err := parser.ParseFile(ctx, f, userID)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Processed file", "file", filepath.Base(path), "transactions", len(txns))
		all = append(all, txns...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all
}

// importTransactions saves txns in order, stopping early if ctx is canceled.
// Entries already in the ledger count as duplicates. When evaluator is set each
// saved transaction is run through the alert rules.
func importTransactions(ctx context.Context, store service.Storage, evaluator *alert.Evaluator,
	txns []model.Transaction, progress func()) importSummary {
	var summary importSummary
	for i := range txns {
		if ctx.Err() != nil {
			break
		}

		txn := txns[i]
		err := store.SaveTransaction(ctx, &txn)
		switch {
		case err == nil:
			summary.Imported++
			if evaluator != nil {
				summary.Alerts += len(evaluator.Evaluate(ctx, txn.UserID, txn))
			}
		case errors.Is(err, common.ErrDuplicateEntry):
			summary.Duplicates++
		default:
			summary.Failed++
			common.LogError(ctx, nil, err, "Failed to save transaction", common.Fields{
				"transaction_id": txn.ID,
				"description":    txn.Description,
			})
		}

		if progress != nil {
			progress()
		}
	}
	return summary
}

func newImportBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func renderSummary(summary importSummary) string {
	body := fmt.Sprintf("Imported:   %d\nDuplicates: %d\nFailed:     %d\nAlerts:     %d",
		summary.Imported, summary.Duplicates, summary.Failed, summary.Alerts)
	status := cli.FormatSuccess("All transactions saved")
	if summary.Failed > 0 {
		status = cli.FormatError(fmt.Sprintf("%d transactions could not be saved", summary.Failed))
	}
	return cli.RenderBox("Import complete", body+"\n\n"+status)
}

func writePreview(w io.Writer, txns []model.Transaction) {
	first, last := txns[0].Date, txns[len(txns)-1].Date
	fmt.Fprintln(w, cli.FormatTitle("Import preview"))
	fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("%d transactions from %s to %s",
		len(txns), first.Format("2006-01-02"), last.Format("2006-01-02"))))

	for i, t := range txns {
		if i >= 10 {
			fmt.Fprintln(w, cli.SubtleStyle.Render(fmt.Sprintf("... and %d more", len(txns)-i)))
			break
		}
		amount := t.Amount.StringFixed(2)
		if t.IsExpense() {
			amount = "-" + amount
		}
		fmt.Fprintf(w, "%s  %-32s %-20s %10s\n", t.Date.Format("2006-01-02"), t.Description, t.Category, amount)
	}
}
