// Package finder provides centralized filesystem search with glob-style
// inclusion and exclusion patterns.
//
// It is the single source of truth for locating pipeline output: directory
// resolution for schema keys, dynamic file discovery (e.g. targets .bed
// files), and per-sample output lookups all go through Search. Matching is
// performed against entry base names, results are returned in stable lexical
// walk order, and "nothing found" is an empty slice rather than an error.
package finder

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Kind selects the type of filesystem entry a search returns.
type Kind int

const (
	// File matches regular files only.
	File Kind = iota
	// Dir matches directories only.
	Dir
)

// MatchMode controls how multiple inclusion patterns combine.
type MatchMode int

const (
	// MatchAny accepts an entry matching at least one inclusion pattern.
	MatchAny MatchMode = iota
	// MatchAll requires an entry to match every inclusion pattern.
	// Used to combine a sample-ID prefix pattern with a step-specific
	// filename pattern in one search.
	MatchAll
)

// Options configures a Search call.
type Options struct {
	// Include is the list of glob patterns an entry must match
	// (per MatchMode). Empty means every entry matches.
	Include []string

	// Exclude removes any entry matching at least one pattern,
	// regardless of inclusion matches.
	Exclude []string

	// Kind filters entries to regular files or directories.
	Kind Kind

	// MatchMode selects any-of or all-of semantics for Include.
	MatchMode MatchMode

	// MaxDepth limits descent below root: 0 restricts the search to
	// immediate children, negative means unbounded recursion.
	MaxDepth int

	// Limit caps the number of returned paths (0 or negative = no cap).
	// Excess matches are silently truncated in walk order.
	Limit int
}

// Search walks root and returns the absolute paths of entries matching opts.
//
// The walk is lexically ordered, so truncation via Limit is deterministic.
// Subtrees that cannot be read are skipped; an unreadable or missing root
// yields an empty result. Search itself never reports "nothing found" as an
// error - that judgement belongs to the caller.
func Search(root string, opts Options) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}

	matches := make([]string, 0)

	// Walk errors are already tolerated inside the callback; a missing
	// root surfaces as a single callback error and an empty result
	_ = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable subtrees and keep walking
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// The root itself is never a result
		if path == absRoot {
			return nil
		}

		depth := entryDepth(absRoot, path)

		if matchEntry(path, d, depth, opts) {
			matches = append(matches, path)
			if opts.Limit > 0 && len(matches) >= opts.Limit {
				return filepath.SkipAll
			}
		}

		// A directory at the depth limit can itself be a match, but
		// nothing below it can be
		if d.IsDir() && opts.MaxDepth >= 0 && depth >= opts.MaxDepth {
			return filepath.SkipDir
		}

		return nil
	})

	return matches
}

// entryDepth returns how many levels below root the path sits
// (0 = immediate child).
func entryDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}

// matchEntry applies kind, depth, inclusion and exclusion filters to a
// single directory entry.
func matchEntry(path string, d fs.DirEntry, depth int, opts Options) bool {
	if opts.MaxDepth >= 0 && depth > opts.MaxDepth {
		return false
	}

	if !matchesKind(path, d, opts.Kind) {
		return false
	}

	name := d.Name()

	if !matchesInclude(name, opts.Include, opts.MatchMode) {
		return false
	}

	for _, pattern := range opts.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return false
		}
	}

	return true
}

// matchesKind reports whether an entry is the requested kind, resolving
// symbolic links through os.Stat so linked files and directories count as
// their targets.
func matchesKind(path string, d fs.DirEntry, kind Kind) bool {
	isDir := d.IsDir()
	isFile := d.Type().IsRegular()

	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		isDir = info.IsDir()
		isFile = info.Mode().IsRegular()
	}

	switch kind {
	case Dir:
		return isDir
	default:
		return isFile
	}
}

// matchesInclude checks name against the inclusion patterns per mode.
// An empty pattern list matches everything.
func matchesInclude(name string, patterns []string, mode MatchMode) bool {
	if len(patterns) == 0 {
		return true
	}

	switch mode {
	case MatchAll:
		for _, pattern := range patterns {
			ok, err := filepath.Match(pattern, name)
			if err != nil || !ok {
				return false
			}
		}
		return true
	default:
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}
}
