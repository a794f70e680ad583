// Package fsys is a small filesystem abstraction returning typed failures.
//
// Every fallible operation returns a [result.Result] whose failure is a
// [*Failure] with a stable Type such as "fs/file-not-found". The
// [Afero] implementation runs on any afero.Fs: [NewOS] for the real disk
// and [NewMemory] for an in-memory tree seeded from a [Genesis] map.
package fsys

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/baxromumarov/taskkit/result"
)

// FileSystem is the set of operations taskkit needs from a filesystem.
// Implementations must be safe for concurrent use.
type FileSystem interface {
	ReadFile(path AbsolutePath) result.Result[string]
	WriteFile(path AbsolutePath, contents string) result.Result[result.Void]
	CreateDirectory(path AbsolutePath, recursive bool) result.Result[result.Void]
	RemoveDirectory(path AbsolutePath, opts RemoveOptions) result.Result[result.Void]
	ListDirectory(path AbsolutePath) result.Result[[]Entry]

	// Get reports the entry at path. A missing path is (Entry{}, false, nil);
	// the error is reserved for unexpected I/O failures.
	Get(path AbsolutePath) (Entry, bool, error)
	Exists(path AbsolutePath) bool

	CreateTempDir(prefix string) (*TempDir, error)
}

// RemoveOptions controls [FileSystem.RemoveDirectory].
type RemoveOptions struct {
	// Recursive removes the directory with its contents.
	Recursive bool
	// Force makes removing a missing directory succeed.
	Force bool
}

// TempDir is a directory created by [FileSystem.CreateTempDir]. Close
// removes it with everything inside.
type TempDir struct {
	Path AbsolutePath
	fs   afero.Fs
}

// Close removes the directory. It is safe to call more than once.
func (d *TempDir) Close() error {
	return d.fs.RemoveAll(d.Path.String())
}

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// Afero implements [FileSystem] on top of an afero.Fs.
type Afero struct {
	fs afero.Fs
}

var _ FileSystem = (*Afero)(nil)

// New wraps fs. It panics if fs is nil.
func New(fs afero.Fs) *Afero {
	if fs == nil {
		panic("fsys: New requires a non-nil afero.Fs")
	}
	return &Afero{fs: fs}
}

// NewOS returns a [FileSystem] backed by the operating system.
func NewOS() *Afero {
	return New(afero.NewOsFs())
}

// Fs exposes the underlying afero.Fs.
func (a *Afero) Fs() afero.Fs { return a.fs }

func (a *Afero) stat(path AbsolutePath) (iofs.FileInfo, bool, error) {
	info, err := a.fs.Stat(path.String())
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return info, true, nil
}

// ReadFile returns the contents of the file at path.
func (a *Afero) ReadFile(path AbsolutePath) result.Result[string] {
	info, ok, err := a.stat(path)
	switch {
	case err != nil:
		return result.Err[string](otherFailure(path, err))
	case !ok:
		return result.Err[string](newFailure(FileNotFound, path))
	case info.IsDir():
		return result.Err[string](newFailure(FileIsADir, path))
	}

	data, err := afero.ReadFile(a.fs, path.String())
	if err != nil {
		return result.Err[string](otherFailure(path, err))
	}
	return result.Ok(string(data))
}

// WriteFile creates or truncates the file at path. The parent directory
// must exist.
func (a *Afero) WriteFile(path AbsolutePath, contents string) result.Result[result.Void] {
	info, ok, err := a.stat(path)
	if err != nil {
		return result.Err[result.Void](otherFailure(path, err))
	}
	if ok && info.IsDir() {
		return result.Err[result.Void](newFailure(FileIsADir, path))
	}

	if r := a.requireParent(path); r.IsErr() {
		return r
	}
	if err := afero.WriteFile(a.fs, path.String(), []byte(contents), filePerm); err != nil {
		return result.Err[result.Void](otherFailure(path, err))
	}
	return result.OkVoid()
}

func (a *Afero) requireParent(path AbsolutePath) result.Result[result.Void] {
	parent, ok, err := a.stat(path.Dir())
	switch {
	case err != nil:
		return result.Err[result.Void](otherFailure(path, err))
	case !ok:
		return result.Err[result.Void](newFailure(ParentNotFound, path))
	case !parent.IsDir():
		return result.Err[result.Void](newFailure(NotADir, path.Dir()))
	}
	return result.OkVoid()
}

// CreateDirectory creates the directory at path. With recursive set, missing
// parents are created and an existing directory is not an error.
func (a *Afero) CreateDirectory(path AbsolutePath, recursive bool) result.Result[result.Void] {
	if recursive {
		if err := a.fs.MkdirAll(path.String(), dirPerm); err != nil {
			return result.Err[result.Void](otherFailure(path, err))
		}
		return result.OkVoid()
	}

	_, ok, err := a.stat(path)
	if err != nil {
		return result.Err[result.Void](otherFailure(path, err))
	}
	if ok {
		return result.Err[result.Void](newFailure(AlreadyExists, path))
	}
	if r := a.requireParent(path); r.IsErr() {
		return r
	}
	if err := a.fs.Mkdir(path.String(), dirPerm); err != nil {
		return result.Err[result.Void](otherFailure(path, err))
	}
	return result.OkVoid()
}

// RemoveDirectory removes the directory at path.
func (a *Afero) RemoveDirectory(path AbsolutePath, opts RemoveOptions) result.Result[result.Void] {
	info, ok, err := a.stat(path)
	switch {
	case err != nil:
		return result.Err[result.Void](otherFailure(path, err))
	case !ok && opts.Force:
		return result.OkVoid()
	case !ok:
		return result.Err[result.Void](newFailure(DirNotFound, path))
	case !info.IsDir():
		return result.Err[result.Void](newFailure(NotADir, path))
	}

	if opts.Recursive {
		if err := a.fs.RemoveAll(path.String()); err != nil {
			return result.Err[result.Void](otherFailure(path, err))
		}
		return result.OkVoid()
	}

	empty, err := afero.IsEmpty(a.fs, path.String())
	if err != nil {
		return result.Err[result.Void](otherFailure(path, err))
	}
	if !empty {
		return result.Err[result.Void](newFailure(DirNotEmpty, path))
	}
	if err := a.fs.Remove(path.String()); err != nil {
		return result.Err[result.Void](otherFailure(path, err))
	}
	return result.OkVoid()
}

// ListDirectory returns the direct children of path sorted by name.
func (a *Afero) ListDirectory(path AbsolutePath) result.Result[[]Entry] {
	info, ok, err := a.stat(path)
	switch {
	case err != nil:
		return result.Err[[]Entry](otherFailure(path, err))
	case !ok:
		return result.Err[[]Entry](newFailure(DirNotFound, path))
	case !info.IsDir():
		return result.Err[[]Entry](newFailure(NotADir, path))
	}

	infos, err := afero.ReadDir(a.fs, path.String())
	if err != nil {
		return result.Err[[]Entry](otherFailure(path, err))
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, entryOf(path.Join(fi.Name()), fi))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path.String() < entries[j].Path.String()
	})
	return result.Ok(entries)
}

// Get implements [FileSystem].
func (a *Afero) Get(path AbsolutePath) (Entry, bool, error) {
	info, ok, err := a.stat(path)
	if err != nil {
		return Entry{}, false, fmt.Errorf("fsys: stat %s: %w", path, err)
	}
	if !ok {
		return Entry{}, false, nil
	}
	return entryOf(path, info), true, nil
}

// Exists reports whether anything exists at path.
func (a *Afero) Exists(path AbsolutePath) bool {
	_, ok, err := a.Get(path)
	return err == nil && ok
}

// CreateTempDir creates a new directory under the system temp directory
// whose name starts with prefix.
func (a *Afero) CreateTempDir(prefix string) (*TempDir, error) {
	if err := a.fs.MkdirAll(os.TempDir(), dirPerm); err != nil {
		return nil, fmt.Errorf("fsys: create temp root: %w", err)
	}
	name, err := afero.TempDir(a.fs, os.TempDir(), prefix)
	if err != nil {
		return nil, fmt.Errorf("fsys: create temp dir: %w", err)
	}
	path, err := ParsePath(name)
	if err != nil {
		return nil, err
	}
	return &TempDir{Path: path, fs: a.fs}, nil
}

func entryOf(path AbsolutePath, info iofs.FileInfo) Entry {
	if info.IsDir() {
		return Entry{Kind: KindDir, Path: path}
	}
	return Entry{Kind: KindFile, Path: path}
}
