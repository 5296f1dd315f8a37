package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/surveyor/internal/analysis"
	"github.com/harrison/surveyor/internal/config"
	"github.com/harrison/surveyor/internal/filelock"
	"github.com/harrison/surveyor/internal/report"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	var (
		analysisID string
		resultsID  string
		snapshot   string
		noRecord   bool
	)

	cmd := &cobra.Command{
		Use:   "validate <analysis-dir>",
		Short: "Discover and validate a pipeline output directory",
		Long: `Resolve the profile schema against an analysis output directory and run
the validation battery:
  - analysis root directory exists
  - expected static files exist
  - no error markers in the qsub logs
  - no error entries in the combined summary table

The outcome of every run is recorded in the report database unless
--no-record is given.

Exit code: 0 if valid, 1 if checks failed or a required item is missing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), cfg, validateOptions{
				Dir:        args[0],
				AnalysisID: analysisID,
				ResultsID:  resultsID,
				Snapshot:   snapshot,
				NoRecord:   noRecord,
				Logger:     log,
			})
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&analysisID, "id", "", "analysis run identifier (default: base name of the analysis dir)")
	cmd.Flags().StringVar(&resultsID, "results-id", "", "timestamped results identifier")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "write the resolved configuration snapshot to this JSON file")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "skip recording the run in the report database")

	return cmd
}

type validateOptions struct {
	Dir        string
	AnalysisID string
	ResultsID  string
	Snapshot   string
	NoRecord   bool
	Logger     analysis.Logger
}

// runValidate builds the analysis, prints the per-check diagnostics, records
// the run, and reports an invalid analysis as a command error.
func runValidate(output io.Writer, cfg *config.Config, opts validateOptions) error {
	id := opts.AnalysisID
	if id == "" {
		abs, err := filepath.Abs(opts.Dir)
		if err != nil {
			return fmt.Errorf("resolve analysis dir: %w", err)
		}
		id = filepath.Base(abs)
	}

	a, err := analysis.New(opts.Dir, id, cfg.Schema, &analysis.Options{
		ResultsID:       opts.ResultsID,
		Logger:          opts.Logger,
		LogErrPatterns:  cfg.LogErrPatterns,
		SummaryErrToken: cfg.SummaryErrToken,
	})
	if err != nil {
		return err
	}

	valid, _ := a.IsValid()
	printValidations(output, a, valid)

	if !opts.NoRecord {
		if err := recordRun(cfg.ReportDB, a, valid); err != nil {
			return fmt.Errorf("record validation run: %w", err)
		}
	}

	if opts.Snapshot != "" {
		if err := writeSnapshot(opts.Snapshot, a.Snapshot()); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	if !valid {
		return fmt.Errorf("analysis %s: %w", id, analysis.ErrAnalysisInvalid)
	}
	return nil
}

// printValidations writes the per-check diagnostics table.
func printValidations(output io.Writer, a *analysis.Analysis, valid bool) {
	fmt.Fprintf(output, "Analysis: %s", a.ID)
	if a.ResultsID != "" {
		fmt.Fprintf(output, " (%s)", a.ResultsID)
	}
	fmt.Fprintf(output, "\nRoot:     %s\n\n", a.RootDir)

	for _, result := range a.Validations() {
		status := "PASS"
		if !result.Status {
			status = "FAIL"
		}
		fmt.Fprintf(output, "  [%s] %s\n", status, result.Name)
		if !result.Status {
			fmt.Fprintf(output, "         %s\n", result.Note)
		}
	}

	verdict := "VALID"
	if !valid {
		verdict = "INVALID"
	}
	fmt.Fprintf(output, "\nResult: %s\n", verdict)
}

// recordRun stores the run outcome in the report database. A sibling lock
// file serializes writers across concurrently launched surveyor processes.
func recordRun(dbPath string, a *analysis.Analysis, valid bool) error {
	lock := filelock.New(dbPath + ".lock")
	return lock.WithLock(func() error {
		store, err := report.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		run := &report.Run{
			AnalysisID: a.ID,
			ResultsID:  a.ResultsID,
			RootDir:    a.RootDir,
			IsValid:    valid,
		}
		for _, result := range a.Validations() {
			run.Checks = append(run.Checks, report.Check{
				Name:   result.Name,
				Status: result.Status,
				Note:   result.Note,
			})
		}
		return store.RecordRun(context.Background(), run)
	})
}

// writeSnapshot exports the downstream handoff structure as JSON.
func writeSnapshot(path string, snap analysis.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(path, append(data, '\n'))
}
