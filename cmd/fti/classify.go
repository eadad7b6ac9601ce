package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fti/internal/classification"
	"github.com/Veraticus/fti/internal/cli"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [descriptions...]",
		Short: "Show the category a description would be filed under",
		Long: `Run descriptions through the configured keyword rules.

Examples:
  fti classify "STARBUCKS #1234"
  fti classify --rules`,
		RunE: runClassify,
	}

	cmd.Flags().Bool("rules", false, "List the keyword rules in match order")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	listRules, _ := cmd.Flags().GetBool("rules")

	classifier, err := classification.NewClassifier(appCfg.Categories)
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}

	out := cmd.OutOrStdout()
	if listRules {
		return writeRules(out, classifier.Rules())
	}
	if len(args) == 0 {
		return fmt.Errorf("provide at least one description, or --rules")
	}
	return writeClassifications(out, classifier, args)
}

func writeClassifications(w io.Writer, classifier *classification.Classifier, descriptions []string) error {
	for _, desc := range descriptions {
		category := classifier.Classify(desc)
		if _, err := fmt.Fprintf(w, "%-40s %s\n", desc, cli.BoldStyle.Render(string(category))); err != nil {
			return err
		}
	}
	return nil
}

func writeRules(w io.Writer, rules []classification.Rule) error {
	var sb strings.Builder
	for i, rule := range rules {
		fmt.Fprintf(&sb, "%2d. %-20s %s\n", i+1, rule.Category, cli.SubtleStyle.Render(strings.Join(rule.Keywords, ", ")))
	}
	_, err := fmt.Fprintln(w, cli.RenderBox("Classification rules", strings.TrimRight(sb.String(), "\n")))
	return err
}
