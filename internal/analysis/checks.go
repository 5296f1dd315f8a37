package analysis

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/surveyor/internal/finder"
	"github.com/harrison/surveyor/internal/registry"
)

// QsubLogsKey is the schema step name of the queue log directory.
const QsubLogsKey = "logs-qsub"

// sampleColumn is the reserved identifier column of the combined summary
// table.
const sampleColumn = "#SAMPLE"

// Default error markers.
const (
	defaultLogErrPattern   = "ERROR:"
	defaultSummaryErrToken = "X"
)

// Check names, in battery order.
const (
	CheckRootExists       = "root_exists"
	CheckStaticFilesExist = "expected_static_files_exist"
	CheckNoQsubLogErrors  = "no_qsub_log_errors"
	CheckNoSummaryErrors  = "no_summary_combined_errors"
)

// CheckResult is the outcome of a single named validation check.
type CheckResult struct {
	// Name identifies the check.
	Name string

	// Status is true when the check passed.
	Status bool

	// Note is a human-readable diagnostic for the check outcome.
	Note string
}

// Validate runs the fixed battery of checks over the resolved analysis
// state and stores the per-check results. The aggregate is the logical AND
// over all statuses. Checks are independent; a failing check does not stop
// the others.
//
// The qsub-log and summary checks require their target resource to be
// resolvable. When the queue log directory or the combined summary file was
// never found during construction, the check returns an error wrapping
// ErrItemMissing and the whole battery aborts with validity left unset.
// Callers that want fail-soft behavior must ensure those dependencies exist
// before validating.
func (a *Analysis) Validate() (bool, error) {
	a.validations = nil
	a.validated = false

	checks := []struct {
		name string
		run  func() (CheckResult, error)
	}{
		{CheckRootExists, a.checkRootExists},
		{CheckStaticFilesExist, a.checkStaticFilesExist},
		{CheckNoQsubLogErrors, a.checkNoQsubLogErrors},
		{CheckNoSummaryErrors, a.checkNoSummaryErrors},
	}

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		result, err := check.run()
		if err != nil {
			return false, fmt.Errorf("check %s: %w", check.name, err)
		}
		results = append(results, result)
	}

	valid := true
	for _, result := range results {
		valid = valid && result.Status
	}

	a.validations = results
	a.valid = valid
	a.validated = true

	a.logInfo(fmt.Sprintf("analysis %s passed validation: %t", a.ID, valid))
	return valid, nil
}

// checkRootExists verifies the analysis root is an existing directory.
func (a *Analysis) checkRootExists() (CheckResult, error) {
	info, err := os.Stat(a.RootDir)
	exists := err == nil && info.IsDir()
	return CheckResult{
		Name:   CheckRootExists,
		Status: exists,
		Note:   fmt.Sprintf("whether the analysis directory (%s) exists", a.RootDir),
	}, nil
}

// checkStaticFilesExist verifies every expected static file exists on disk.
// The note records the per-file existence tuple for diagnosis.
func (a *Analysis) checkStaticFilesExist() (CheckResult, error) {
	all := true
	var note strings.Builder
	note.WriteString("whether all of the expected files in the analysis exist:")

	for _, name := range []string{PairedSamplesKey, FastqRawKey, SettingsKey, SummaryCombinedKey} {
		path := a.staticFiles[name]
		_, err := os.Stat(path)
		exists := err == nil
		all = all && exists
		note.WriteString(fmt.Sprintf("\n(%s, %s, %t)", name, path, exists))
	}

	return CheckResult{
		Name:   CheckStaticFilesExist,
		Status: all,
		Note:   note.String(),
	}, nil
}

// QsubLogFiles returns the log files under the analysis's queue log
// directory. When logdir is empty, the directory is taken from the resolved
// registry entry for logs-qsub; an unresolved entry is an ErrItemMissing
// error.
func (a *Analysis) QsubLogFiles(logdir string) ([]string, error) {
	if logdir == "" {
		dir, ok := registry.One(a.reg.Dirs(QsubLogsKey))
		if !ok {
			return nil, itemMissing("qsub log dir not found for analysis %s", a.ID)
		}
		logdir = dir
	}

	return finder.Search(logdir, finder.Options{
		Kind:     finder.File,
		MaxDepth: -1,
	}), nil
}

// checkNoQsubLogErrors scans every queue log file line-by-line for the
// configured error markers. Any matching line in any file fails the check.
func (a *Analysis) checkNoQsubLogErrors() (CheckResult, error) {
	logFiles, err := a.QsubLogFiles("")
	if err != nil {
		return CheckResult{}, err
	}
	if len(logFiles) == 0 {
		return CheckResult{}, itemMissing("qsub log files not found for analysis %s", a.ID)
	}

	var withErrors []string
	for _, logFile := range logFiles {
		a.logTrace(fmt.Sprintf("scanning qsub log %s", logFile))
		hasErrors, err := fileContainsPatterns(logFile, a.logErrPatterns)
		if err != nil {
			return CheckResult{}, err
		}
		if hasErrors {
			withErrors = append(withErrors, logFile)
		}
	}

	if len(withErrors) > 0 {
		a.logError("error messages were found in some qsub logs")
		a.logDebug(fmt.Sprintf("qsub log files containing errors: %s", strings.Join(withErrors, "\n")))
	}

	return CheckResult{
		Name:   CheckNoQsubLogErrors,
		Status: len(withErrors) == 0,
		Note:   fmt.Sprintf("whether errors are present in the qsub logs (%d of %d files flagged)", len(withErrors), len(logFiles)),
	}, nil
}

// fileContainsPatterns reports whether any line of the file contains any of
// the given substrings. The file handle is released on all paths.
func fileContainsPatterns(path string, patterns []string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open log file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, pattern := range patterns {
			if strings.Contains(line, pattern) {
				return true, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("scan log file %s: %w", path, err)
	}
	return false, nil
}

// SummaryRows parses the combined summary table as header-keyed rows.
// The file handle is released before returning.
func (a *Analysis) SummaryRows() ([]map[string]string, error) {
	path := a.staticFiles[SummaryCombinedKey]
	if path == "" {
		return nil, itemMissing("summary_combined_wes file not set for analysis %s", a.ID)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, itemMissing("summary_combined_wes file %s could not be read", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse summary_combined_wes file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// checkNoSummaryErrors scans every non-identifier cell of the
// combined summary table for the configured error token. The note lists the
// identifier of every offending row.
func (a *Analysis) checkNoSummaryErrors() (CheckResult, error) {
	rows, err := a.SummaryRows()
	if err != nil {
		return CheckResult{}, err
	}

	seen := make(map[string]bool)
	var flagged []string
	for _, row := range rows {
		sampleID := row[sampleColumn]
		for key, value := range row {
			if key == sampleColumn {
				continue
			}
			if value == a.summaryErrToken {
				if !seen[sampleID] {
					seen[sampleID] = true
					flagged = append(flagged, sampleID)
				}
			}
		}
	}

	note := "whether error entries are present in the summary combined file"
	if len(flagged) > 0 {
		note = fmt.Sprintf("%s; samples with errors: %s", note, strings.Join(flagged, ", "))
		a.logWarn(fmt.Sprintf("error entries found in %s for samples: %v", summaryCombinedFilename, flagged))
	}

	return CheckResult{
		Name:   CheckNoSummaryErrors,
		Status: len(flagged) == 0,
		Note:   note,
	}, nil
}
