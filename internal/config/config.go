// Package config loads the surveyor profile file.
//
// The profile is the boundary collaborator of the discovery core: it carries
// the output schema (the expected step directories and their filename
// patterns), the validation error markers, and tool settings. The core never
// reads the profile from disk itself; it receives the parsed structure.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/surveyor/internal/analysis"
)

// Config represents surveyor configuration options.
type Config struct {
	// Schema describes the expected pipeline output layout and carries
	// the pass-through run settings.
	Schema analysis.Schema `yaml:",inline"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogErrPatterns are the substrings flagged as errors in qsub logs
	LogErrPatterns []string `yaml:"log_err_patterns"`

	// SummaryErrToken is the cell value flagged as an error in the
	// combined summary table
	SummaryErrToken string `yaml:"summary_err_token"`

	// ReportDB is the path to the validation run-history database
	ReportDB string `yaml:"report_db"`
}

// DefaultConfig returns a Config with sensible default values.
// The default schema covers the standard WES output steps.
func DefaultConfig() *Config {
	return &Config{
		Schema: analysis.Schema{
			OutputIndex: map[string][]string{
				analysis.ParentKey: nil,
				"BAM-DD":           {"*.dd.bam"},
				"BAM-GATK-RA-RC":   {"*.dd.ra.rc.bam"},
				"QC-coverage":      {"*.sample_summary"},
				"VCF-GATK-HC":      {"*.vcf"},
				"VCF-LoFreq":       {"*.vcf"},
				analysis.QsubLogsKey: nil,
			},
		},
		LogLevel:        "info",
		LogErrPatterns:  []string{"ERROR:"},
		SummaryErrToken: "X",
		ReportDB:        ".surveyor/reports.db",
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if len(fileCfg.Schema.OutputIndex) > 0 {
		cfg.Schema.OutputIndex = fileCfg.Schema.OutputIndex
	}
	if fileCfg.Schema.EmailRecipients != "" {
		cfg.Schema.EmailRecipients = fileCfg.Schema.EmailRecipients
	}
	if fileCfg.Schema.PipelineRepo != "" {
		cfg.Schema.PipelineRepo = fileCfg.Schema.PipelineRepo
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if len(fileCfg.LogErrPatterns) > 0 {
		cfg.LogErrPatterns = fileCfg.LogErrPatterns
	}
	if fileCfg.SummaryErrToken != "" {
		cfg.SummaryErrToken = fileCfg.SummaryErrToken
	}
	if fileCfg.ReportDB != "" {
		cfg.ReportDB = fileCfg.ReportDB
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .surveyor/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".surveyor", "config.yaml"))
}
