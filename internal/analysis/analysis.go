// Package analysis discovers and validates the output tree of a pipeline
// run.
//
// An Analysis is bound to one output root directory. At construction it
// resolves the supplied Schema into registries of step directories and
// dynamically-named files, computes the fixed set of well-known file paths,
// and (unless debug mode is requested) immediately runs the validation
// battery. Per-sample views are built on demand as Sample values carrying an
// immutable snapshot of the resolved state.
package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/harrison/surveyor/internal/finder"
	"github.com/harrison/surveyor/internal/registry"
)

// Fixed file names directly under the analysis output root.
const (
	pairedSamplesFilename   = "samples.pairs.csv"
	fastqRawFilename        = "samples.fastq-raw.csv"
	settingsFilename        = "settings.txt"
	summaryCombinedFilename = "summary-combined.wes.csv"
)

// Logical names for the static files.
const (
	PairedSamplesKey   = "paired_samples"
	FastqRawKey        = "samples_fastq_raw"
	SettingsKey        = "settings"
	SummaryCombinedKey = "summary_combined_wes"
)

// TargetsBEDKey is the logical name of the dynamically-discovered targets
// .bed file.
const TargetsBEDKey = "targets_bed"

// Logger is the leveled logging surface the analysis reports progress to.
// A nil Logger is valid and discards all messages. Trace carries
// per-filesystem-entry noise (every log file scanned); debug carries
// per-resolution-step detail.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Options adjusts analysis construction.
type Options struct {
	// ResultsID is the optional timestamped sub-run identifier.
	ResultsID string

	// Debug skips validation at construction; IsValid stays unset until
	// Validate is called explicitly.
	Debug bool

	// Logger receives progress and diagnostic messages; nil discards.
	Logger Logger

	// LogErrPatterns are the substrings treated as error markers in queue
	// log files. Empty means the default ("ERROR:").
	LogErrPatterns []string

	// SummaryErrToken is the cell value treated as a propagated error in
	// the combined summary table. Empty means the default ("X").
	SummaryErrToken string
}

// Analysis is the discovery and validation context for one pipeline output
// directory.
type Analysis struct {
	// ID is the run identifier, typically the parent output dir name.
	ID string

	// ResultsID is the optional timestamped results identifier.
	ResultsID string

	// RootDir is the absolute path to the analysis output directory.
	RootDir string

	// Schema is the externally supplied output layout description.
	Schema Schema

	reg         *registry.Registry
	staticFiles map[string]string

	logErrPatterns  []string
	summaryErrToken string
	logger          Logger

	validations []CheckResult
	valid       bool
	validated   bool
}

// New constructs an Analysis for the output tree at dir, resolves the schema
// into directory and file registries, and runs validation unless opts.Debug
// is set.
//
// A root directory that cannot be resolved or does not exist is a hard
// construction error wrapping ErrItemMissing; an existing but incomplete
// root is instead reported through the validation results.
func New(dir, id string, schema Schema, opts *Options) (*Analysis, error) {
	if opts == nil {
		opts = &Options{}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve analysis dir %s: %w", dir, err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, itemMissing("analysis dir %s not found", absDir)
		}
		// Unreadable is not the same as absent (e.g. permission denied)
		return nil, fmt.Errorf("stat analysis dir %s: %w", absDir, err)
	}
	if !info.IsDir() {
		return nil, itemMissing("analysis dir %s is not a directory", absDir)
	}

	a := &Analysis{
		ID:              id,
		ResultsID:       opts.ResultsID,
		RootDir:         absDir,
		Schema:          schema,
		reg:             registry.New(),
		logErrPatterns:  opts.LogErrPatterns,
		summaryErrToken: opts.SummaryErrToken,
		logger:          opts.Logger,
	}
	if len(a.logErrPatterns) == 0 {
		a.logErrPatterns = []string{defaultLogErrPattern}
	}
	if a.summaryErrToken == "" {
		a.summaryErrToken = defaultSummaryErrToken
	}

	a.resolveDirs()
	a.resolveFiles()
	a.resolveStaticFiles()

	if !opts.Debug {
		if _, err := a.Validate(); err != nil {
			return nil, fmt.Errorf("validate analysis %s: %w", id, err)
		}
	}

	return a, nil
}

// resolveDirs resolves one immediate-child directory per schema step name.
// Every step name gets a registry entry, possibly empty - no key is silently
// dropped.
func (a *Analysis) resolveDirs() {
	for _, name := range a.Schema.StepNames() {
		found := finder.Search(a.RootDir, finder.Options{
			Include:  []string{name},
			Kind:     finder.Dir,
			MaxDepth: 0,
			Limit:    1,
		})
		a.reg.SetDirs(name, found...)
		a.logDebug(fmt.Sprintf("resolved step dir %s: %v", name, found))
	}
}

// resolveFiles resolves files without consistent naming, currently the
// targets .bed file with the chromosome target regions. The padded variant
// is excluded.
func (a *Analysis) resolveFiles() {
	found := finder.Search(a.RootDir, finder.Options{
		Include:  []string{"*.bed"},
		Exclude:  []string{"*.pad10.bed"},
		Kind:     finder.File,
		MaxDepth: 0,
		Limit:    1,
	})
	a.reg.SetFiles(TargetsBEDKey, found...)
}

// resolveStaticFiles computes the paths of files that always live in the
// same location under the output root. The paths are computed, not checked
// for existence - that is the validation battery's job.
func (a *Analysis) resolveStaticFiles() {
	a.staticFiles = map[string]string{
		PairedSamplesKey:   filepath.Join(a.RootDir, pairedSamplesFilename),
		FastqRawKey:        filepath.Join(a.RootDir, fastqRawFilename),
		SettingsKey:        filepath.Join(a.RootDir, settingsFilename),
		SummaryCombinedKey: filepath.Join(a.RootDir, summaryCombinedFilename),
	}
}

// Dirs returns the resolved directory paths for a schema step name.
// Lookup is total: an unresolved or unknown name yields an empty slice.
func (a *Analysis) Dirs(name string) []string {
	return a.reg.Dirs(name)
}

// Files returns the resolved dynamic file paths for a logical name.
func (a *Analysis) Files(name string) []string {
	return a.reg.Files(name)
}

// StaticFiles returns a copy of the fixed logical-name to path mapping.
func (a *Analysis) StaticFiles() map[string]string {
	out := make(map[string]string, len(a.staticFiles))
	for name, path := range a.staticFiles {
		out[name] = path
	}
	return out
}

// StaticFile returns the computed path for a static file logical name, or
// "" when the name is unknown.
func (a *Analysis) StaticFile(name string) string {
	return a.staticFiles[name]
}

// IsValid reports the validation outcome. ok is false until Validate has
// run (e.g. for an analysis constructed in debug mode).
func (a *Analysis) IsValid() (valid bool, ok bool) {
	return a.valid, a.validated
}

// Validations returns the ordered per-check results of the last Validate
// run, or nil when validation has not run.
func (a *Analysis) Validations() []CheckResult {
	if a.validations == nil {
		return nil
	}
	out := make([]CheckResult, len(a.validations))
	copy(out, a.validations)
	return out
}

// DeriveSampleIDs reads the raw-fastq manifest and returns the
// de-duplicated sample identifiers, sorted for deterministic downstream
// processing. The manifest has no header; the first column of every row is
// a sample ID and the same ID may repeat (one row per raw input file).
func (a *Analysis) DeriveSampleIDs() ([]string, error) {
	return a.DeriveSampleIDsFrom(a.staticFiles[FastqRawKey])
}

// DeriveSampleIDsFrom derives sample IDs from an explicit manifest path.
func (a *Analysis) DeriveSampleIDsFrom(path string) ([]string, error) {
	if path == "" {
		return nil, itemMissing("samples_fastq_raw file not set for analysis %s", a.ID)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, itemMissing("samples_fastq_raw file %s could not be read", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	seen := make(map[string]bool)
	ids := make([]string, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse samples_fastq_raw file %s: %w", path, err)
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if !seen[row[0]] {
			seen[row[0]] = true
			ids = append(ids, row[0])
		}
	}

	sort.Strings(ids)
	return ids, nil
}

// Samples derives the sample IDs from the raw-fastq manifest and builds one
// Sample context per ID.
func (a *Analysis) Samples() ([]*Sample, error) {
	ids, err := a.DeriveSampleIDs()
	if err != nil {
		return nil, err
	}
	return a.BuildSamples(ids...)
}

// BuildSamples constructs one Sample per ID, each carrying an immutable
// snapshot of the currently resolved directories and files. Samples never
// re-trigger parent resolution.
func (a *Analysis) BuildSamples(ids ...string) ([]*Sample, error) {
	samples := make([]*Sample, 0, len(ids))
	for _, id := range ids {
		samples = append(samples, a.newSample(id))
	}
	return samples, nil
}

// Snapshot returns the flat configuration handoff for downstream
// orchestration: identifiers, resolved mappings and the validation outcome.
func (a *Analysis) Snapshot() Snapshot {
	return Snapshot{
		AnalysisID:  a.ID,
		ResultsID:   a.ResultsID,
		RootDir:     a.RootDir,
		Dirs:        a.reg.DirMap(),
		Files:       a.reg.FileMap(),
		StaticFiles: a.StaticFiles(),
		IsValid:     a.valid,
		Validated:   a.validated,
	}
}

// Snapshot is the sole handoff contract to higher-level orchestration: a
// flat copy of the analysis's resolved state. It holds no live reference to
// the Analysis.
type Snapshot struct {
	AnalysisID  string              `json:"analysis_id"`
	ResultsID   string              `json:"results_id"`
	RootDir     string              `json:"root_dir"`
	Dirs        map[string][]string `json:"dirs"`
	Files       map[string][]string `json:"files"`
	StaticFiles map[string]string   `json:"static_files"`
	IsValid     bool                `json:"is_valid"`
	Validated   bool                `json:"validated"`
}

func (a *Analysis) logTrace(msg string) {
	if a.logger != nil {
		a.logger.LogTrace(msg)
	}
}

func (a *Analysis) logDebug(msg string) {
	if a.logger != nil {
		a.logger.LogDebug(msg)
	}
}

func (a *Analysis) logInfo(msg string) {
	if a.logger != nil {
		a.logger.LogInfo(msg)
	}
}

func (a *Analysis) logWarn(msg string) {
	if a.logger != nil {
		a.logger.LogWarn(msg)
	}
}

func (a *Analysis) logError(msg string) {
	if a.logger != nil {
		a.logger.LogError(msg)
	}
}
