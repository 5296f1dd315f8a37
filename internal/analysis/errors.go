package analysis

import (
	"errors"
	"fmt"
)

// ErrItemMissing signals that a resource the caller explicitly requested
// (a directory, a file, a set of log files) could not be resolved from the
// analysis output. Lookup operations and dependency-bound validation checks
// return errors wrapping this sentinel; use errors.Is to classify.
var ErrItemMissing = errors.New("analysis item missing")

// ErrAnalysisInvalid is reserved for callers that treat a failed validation
// as fatal. The core computes and exposes validity but never returns this on
// the caller's behalf; raising on an invalid analysis is an orchestration
// policy decision.
var ErrAnalysisInvalid = errors.New("analysis invalid")

// itemMissing builds an error wrapping ErrItemMissing with a formatted,
// human-readable description of the missing resource.
func itemMissing(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrItemMissing)
}
