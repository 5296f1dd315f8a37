// Package registry provides a named-key store of resolved filesystem paths.
//
// A Registry keeps two independent mappings, one for directories and one for
// files. Lookup is total: an absent key yields an empty slice, never an
// error. Deciding whether absence is fatal belongs to the caller.
package registry

import "path/filepath"

// Registry maps logical names to ordered sequences of absolute paths.
type Registry struct {
	dirs  map[string][]string
	files map[string][]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		dirs:  make(map[string][]string),
		files: make(map[string][]string),
	}
}

// SetDirs stores the directory paths for name, replacing any previous entry.
// Paths are normalized to absolute form.
func (r *Registry) SetDirs(name string, paths ...string) {
	r.dirs[name] = absAll(paths)
}

// SetFiles stores the file paths for name, replacing any previous entry.
// Paths are normalized to absolute form.
func (r *Registry) SetFiles(name string, paths ...string) {
	r.files[name] = absAll(paths)
}

// Dirs returns the directory paths stored under name.
// An absent key yields an empty slice.
func (r *Registry) Dirs(name string) []string {
	return copyPaths(r.dirs[name])
}

// Files returns the file paths stored under name.
// An absent key yields an empty slice.
func (r *Registry) Files(name string) []string {
	return copyPaths(r.files[name])
}

// DirMap returns a copy of the full directory mapping.
func (r *Registry) DirMap() map[string][]string {
	return copyMap(r.dirs)
}

// FileMap returns a copy of the full file mapping.
func (r *Registry) FileMap() map[string][]string {
	return copyMap(r.files)
}

// Clone returns an independent copy of the registry. Sample contexts take
// their parent's resolved state through Clone, so later mutation of either
// side never leaks across.
func (r *Registry) Clone() *Registry {
	return &Registry{
		dirs:  copyMap(r.dirs),
		files: copyMap(r.files),
	}
}

// One reduces a path sequence to its single element. It returns the path and
// true only when exactly one element exists; zero or several yield "" and
// false.
func One(paths []string) (string, bool) {
	if len(paths) == 1 {
		return paths[0], true
	}
	return "", false
}

func absAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		out = append(out, abs)
	}
	return out
}

func copyPaths(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}

func copyMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for name, paths := range m {
		out[name] = copyPaths(paths)
	}
	return out
}
