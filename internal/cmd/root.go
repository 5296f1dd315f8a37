package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for surveyor
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveyor",
		Short: "Schema-driven pipeline output discovery and validation",
		Long: `Surveyor inspects the output directory of a batch sequencing
pipeline run, resolves the expected step directories and files against a
declarative schema, and runs a battery of validation checks to decide
whether the output is sound for downstream processing.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "path to the surveyor profile (default .surveyor/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log verbosity: trace, debug, info, warn, error")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewSamplesCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
