// Package glob matches path patterns against a [fsys.FileSystem].
//
// Supported syntax, per path segment: "*" (any run of characters), "?"
// (one character), "{a,b}" (alternation) and "**" as a whole segment
// (zero or more directories).
//
// The walk fans out with [task.All] at unbounded concurrency and reads the
// filesystem through a memoized view, so each directory is listed once.
package glob

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/baxromumarov/taskkit/fsys"
	"github.com/baxromumarov/taskkit/memo"
	"github.com/baxromumarov/taskkit/result"
	"github.com/baxromumarov/taskkit/task"
)

// ErrCwdNotFound is returned when Options.Cwd does not exist.
var ErrCwdNotFound = errors.New("glob: cwd does not exist")

// Options describes a glob walk.
type Options struct {
	Pattern string
	Cwd     fsys.AbsolutePath
	// OnlyFiles drops directories from the result.
	OnlyFiles bool
}

// Glob returns the entries under opts.Cwd matching opts.Pattern, sorted by
// path. A pattern that matches nothing yields an empty slice, not an
// error.
func Glob(ctx context.Context, fs fsys.FileSystem, opts Options) ([]fsys.Entry, error) {
	if opts.Cwd.IsZero() {
		return nil, fmt.Errorf("glob: cwd is required")
	}
	chunks, err := Parse(opts.Pattern)
	if err != nil {
		return nil, err
	}

	w := &walker{fs: newCachedFS(fs), visited: make(map[string]struct{})}

	_, ok, err := w.fs.get(opts.Cwd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCwdNotFound, opts.Cwd)
	}

	entries, err := w.walk(ctx, chunks, opts.Cwd)
	if err != nil {
		return nil, err
	}

	out := make([]fsys.Entry, 0, len(entries))
	for _, e := range entries {
		if opts.OnlyFiles && !e.IsFile() {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path.String() < out[j].Path.String()
	})
	return out, nil
}

// GlobFiles is [Glob] with OnlyFiles set, returning paths.
func GlobFiles(ctx context.Context, fs fsys.FileSystem, opts Options) ([]fsys.AbsolutePath, error) {
	opts.OnlyFiles = true
	entries, err := Glob(ctx, fs, opts)
	if err != nil {
		return nil, err
	}
	paths := make([]fsys.AbsolutePath, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths, nil
}

type walker struct {
	fs *cachedFS

	mu      sync.Mutex
	visited map[string]struct{}
}

// visit records path and reports whether it was new. Check and insert
// happen under one lock.
func (w *walker) visit(path fsys.AbsolutePath) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, seen := w.visited[path.String()]; seen {
		return false
	}
	w.visited[path.String()] = struct{}{}
	return true
}

func (w *walker) walk(ctx context.Context, chunks []Chunk, cwd fsys.AbsolutePath) ([]fsys.Entry, error) {
	entry, ok, err := w.fs.get(cwd)
	if err != nil || !ok {
		return nil, err
	}

	if len(chunks) == 0 {
		if w.visit(cwd) {
			return []fsys.Entry{entry}, nil
		}
		return nil, nil
	}
	if !entry.IsDir() {
		return nil, nil
	}

	chunk, rest := chunks[0], chunks[1:]
	switch chunk.Kind {
	case Literal:
		return w.walk(ctx, rest, cwd.Join(chunk.Value))

	case Pattern:
		children, err := w.fs.list(cwd)
		if err != nil {
			return nil, err
		}
		var branches []task.Task[[]fsys.Entry]
		for _, child := range children {
			if chunk.Regexp.MatchString(child.Path.Base()) {
				branches = append(branches, w.branch(rest, child.Path))
			}
		}
		return w.fanOut(ctx, branches)

	default: // Globstar
		children, err := w.fs.list(cwd)
		if err != nil {
			return nil, err
		}
		// Consume "**" here, or keep it and go one level deeper. A trailing
		// "**" also matches the files of every level it passes through.
		branches := []task.Task[[]fsys.Entry]{w.branch(rest, cwd)}
		for _, child := range children {
			switch {
			case child.IsDir():
				branches = append(branches, w.branch(chunks, child.Path))
			case len(rest) == 0:
				branches = append(branches, w.branch(rest, child.Path))
			}
		}
		return w.fanOut(ctx, branches)
	}
}

func (w *walker) branch(chunks []Chunk, cwd fsys.AbsolutePath) task.Task[[]fsys.Entry] {
	return func(ctx context.Context) ([]fsys.Entry, error) {
		return w.walk(ctx, chunks, cwd)
	}
}

func (w *walker) fanOut(ctx context.Context, branches []task.Task[[]fsys.Entry]) ([]fsys.Entry, error) {
	results, err := task.All(ctx, branches, task.Unbounded)
	if err != nil {
		return nil, err
	}
	var out []fsys.Entry
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

type lookup struct {
	entry fsys.Entry
	ok    bool
}

// cachedFS memoizes the two read operations the walk performs.
type cachedFS struct {
	gets  *memo.Memo[fsys.AbsolutePath, lookup]
	lists *memo.Memo[fsys.AbsolutePath, result.Result[[]fsys.Entry]]
}

func newCachedFS(fs fsys.FileSystem) *cachedFS {
	key := fsys.AbsolutePath.String
	return &cachedFS{
		gets: memo.Keyed(func(p fsys.AbsolutePath) (lookup, error) {
			e, ok, err := fs.Get(p)
			return lookup{entry: e, ok: ok}, err
		}, key),
		lists: memo.Keyed(func(p fsys.AbsolutePath) (result.Result[[]fsys.Entry], error) {
			return fs.ListDirectory(p), nil
		}, key),
	}
}

func (c *cachedFS) get(p fsys.AbsolutePath) (fsys.Entry, bool, error) {
	l, err := c.gets.Get(p)
	return l.entry, l.ok, err
}

func (c *cachedFS) list(p fsys.AbsolutePath) ([]fsys.Entry, error) {
	r, err := c.lists.Get(p)
	if err != nil {
		return nil, err
	}
	return r.ToError()
}
