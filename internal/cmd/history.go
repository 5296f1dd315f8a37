package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/surveyor/internal/report"
)

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	var (
		limit      int
		showChecks bool
	)

	cmd := &cobra.Command{
		Use:   "history [analysis-id]",
		Short: "Show recorded validation runs",
		Long: `List validation runs recorded in the report database, most recent
first. With an analysis-id argument, only runs for that analysis are
shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSetup(cmd)
			if err != nil {
				return err
			}

			analysisID := ""
			if len(args) == 1 {
				analysisID = args[0]
			}

			store, err := report.NewStore(cfg.ReportDB)
			if err != nil {
				return err
			}
			defer store.Close()

			return printHistory(cmd.OutOrStdout(), store, analysisID, limit, showChecks)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show (0 = all)")
	cmd.Flags().BoolVar(&showChecks, "checks", false, "show per-check results for each run")

	return cmd
}

// printHistory writes the recorded runs to output.
func printHistory(output io.Writer, store *report.Store, analysisID string, limit int, showChecks bool) error {
	runs, err := store.Runs(context.Background(), analysisID, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(output, "no recorded validation runs")
		return nil
	}

	for _, run := range runs {
		verdict := "VALID"
		if !run.IsValid {
			verdict = "INVALID"
		}
		fmt.Fprintf(output, "%s  %-8s %s", run.CreatedAt.Format("2006-01-02 15:04:05"), verdict, run.AnalysisID)
		if run.ResultsID != "" {
			fmt.Fprintf(output, " (%s)", run.ResultsID)
		}
		fmt.Fprintln(output)

		if showChecks {
			for _, check := range run.Checks {
				status := "PASS"
				if !check.Status {
					status = "FAIL"
				}
				fmt.Fprintf(output, "    [%s] %s\n", status, check.Name)
			}
		}
	}
	return nil
}
