package analysis

import (
	"fmt"

	"github.com/harrison/surveyor/internal/finder"
	"github.com/harrison/surveyor/internal/registry"
)

// Sample is a per-sample view of an analysis output. It carries an
// immutable snapshot of the parent's resolved directories and files taken
// at construction time: lookups never re-trigger schema resolution, and
// mutation of the parent after construction is not reflected here.
type Sample struct {
	// ID is the sample identifier.
	ID string

	// AnalysisID, ResultsID and RootDir are inherited parent scalars.
	AnalysisID string
	ResultsID  string
	RootDir    string

	// AnalysisIsValid is the parent's validation outcome at the moment
	// the sample was built (false when the parent never validated).
	AnalysisIsValid bool

	// SearchPattern is the "<id>*" glob used to scope file lookups to
	// this sample.
	SearchPattern string

	staticFiles map[string]string
	reg         *registry.Registry
	logger      Logger
}

// newSample builds the per-sample view from the analysis's current resolved
// state. The registries are copied, not aliased.
func (a *Analysis) newSample(id string) *Sample {
	return &Sample{
		ID:              id,
		AnalysisID:      a.ID,
		ResultsID:       a.ResultsID,
		RootDir:         a.RootDir,
		AnalysisIsValid: a.valid,
		SearchPattern:   id + "*",
		staticFiles:     a.StaticFiles(),
		reg:             a.reg.Clone(),
		logger:          a.logger,
	}
}

// Dirs returns the inherited directory paths for a schema step name.
// Lookup is total: an unknown name yields an empty slice.
func (s *Sample) Dirs(name string) []string {
	return s.reg.Dirs(name)
}

// Files returns the inherited dynamic file paths for a logical name.
func (s *Sample) Files(name string) []string {
	return s.reg.Files(name)
}

// StaticFile returns the inherited path for a static file logical name.
func (s *Sample) StaticFile(name string) string {
	return s.staticFiles[name]
}

// LookupOutput finds this sample's output files for an analysis step.
//
// The step's directory comes from the inherited registry; an unresolved
// step is an error wrapping ErrItemMissing. Within the directory, a file
// must match both the caller-supplied pattern and the sample's own
// "<id>*" pattern, which disambiguates same-named outputs across samples
// sharing a step directory. An empty result is a valid "no output yet"
// outcome, distinct from the missing-directory error.
func (s *Sample) LookupOutput(step, pattern string) ([]string, error) {
	searchDir, ok := registry.One(s.reg.Dirs(step))
	if !ok {
		return nil, itemMissing("search dir not found for step %s (sample %s)", step, s.ID)
	}

	if s.logger != nil {
		s.logger.LogDebug(fmt.Sprintf("searching for %s files matching %q in %s", s.ID, pattern, searchDir))
	}

	return finder.Search(searchDir, finder.Options{
		Include:   []string{pattern, s.SearchPattern},
		Kind:      finder.File,
		MatchMode: finder.MatchAll,
		MaxDepth:  -1,
	}), nil
}
