package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/surveyor/internal/analysis"
	"github.com/harrison/surveyor/internal/config"
)

// NewSamplesCommand creates and returns the samples subcommand
func NewSamplesCommand() *cobra.Command {
	var resultsID string

	cmd := &cobra.Command{
		Use:   "samples <analysis-dir>",
		Short: "List the sample identifiers of an analysis output",
		Long: `Derive the sample identifiers from the raw-fastq manifest
(samples.fastq-raw.csv) of an analysis output directory. Duplicate
identifiers in the manifest are reported once.

The analysis is constructed without validation, so an incomplete output
can still be inspected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			return runSamples(cmd.OutOrStdout(), cfg, args[0], resultsID, log)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&resultsID, "results-id", "", "timestamped results identifier")

	return cmd
}

// runSamples derives and prints the sample IDs of the analysis at dir.
func runSamples(output io.Writer, cfg *config.Config, dir, resultsID string, log analysis.Logger) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve analysis dir: %w", err)
	}

	// Debug mode: sample listing should work on partial output
	a, err := analysis.New(dir, filepath.Base(abs), cfg.Schema, &analysis.Options{
		ResultsID: resultsID,
		Debug:     true,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	ids, err := a.DeriveSampleIDs()
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Fprintln(output, id)
	}
	return nil
}
