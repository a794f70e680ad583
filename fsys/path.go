package fsys

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotAbsolute is returned by [ParsePath] for relative or empty paths.
var ErrNotAbsolute = errors.New("fsys: path is not absolute")

// AbsolutePath is a cleaned, absolute filesystem path.
// The zero value is not a valid path; build one with [ParsePath] or
// [MustPath].
type AbsolutePath struct {
	path string
}

// ParsePath validates p and returns it cleaned.
func ParsePath(p string) (AbsolutePath, error) {
	if p == "" {
		return AbsolutePath{}, fmt.Errorf("%w: empty path", ErrNotAbsolute)
	}
	if !filepath.IsAbs(p) {
		return AbsolutePath{}, fmt.Errorf("%w, was: %s", ErrNotAbsolute, p)
	}
	return AbsolutePath{path: filepath.Clean(p)}, nil
}

// MustPath is like [ParsePath] but panics on error.
func MustPath(p string) AbsolutePath {
	ap, err := ParsePath(p)
	if err != nil {
		panic(err.Error())
	}
	return ap
}

// Join appends elem to p and cleans the result.
func (p AbsolutePath) Join(elem ...string) AbsolutePath {
	return AbsolutePath{path: filepath.Join(append([]string{p.path}, elem...)...)}
}

// Dir returns the parent directory. The parent of the root is the root.
func (p AbsolutePath) Dir() AbsolutePath {
	return AbsolutePath{path: filepath.Dir(p.path)}
}

// Base returns the last element of p.
func (p AbsolutePath) Base() string {
	return filepath.Base(p.path)
}

// RelativeFrom returns p relative to root, e.g. "lib/server.ts".
func (p AbsolutePath) RelativeFrom(root AbsolutePath) (string, error) {
	return filepath.Rel(root.path, p.path)
}

// IsZero reports whether p was never set.
func (p AbsolutePath) IsZero() bool { return p.path == "" }

func (p AbsolutePath) String() string { return p.path }
