package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/surveyor/internal/config"
	"github.com/harrison/surveyor/internal/logger"
)

// loadSetup resolves the profile and logger for a command invocation.
// The --config flag names an explicit profile; otherwise the profile is
// looked up under the current directory. --log-level overrides the profile.
func loadSetup(cmd *cobra.Command) (*config.Config, *logger.ConsoleLogger, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}

	return cfg, logger.NewConsoleLogger(os.Stderr, level), nil
}
