package fsys

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/taskkit/result"
)

func mustPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		require.Contains(t, fmt.Sprint(r), contains)
	}()
	fn()
}

func failureType[V any](t *testing.T, r result.Result[V]) string {
	t.Helper()
	require.True(t, r.IsErr(), "expected a failure, got %v", r)
	return r.Failure().Type()
}

func sampleTree() *Afero {
	return NewMemory(Genesis{
		"/proj": Genesis{
			"lib": map[string]any{
				"server.ts": "server file",
			},
			"index.ts":  "a typescript file",
			"README.md": "# readme",
		},
		"/empty": Genesis{},
	})
}

func TestAbsolutePath(t *testing.T) {
	p := MustPath("/proj/lib/../index.ts")
	assert.Equal(t, "/proj/index.ts", p.String())
	assert.Equal(t, "index.ts", p.Base())
	assert.Equal(t, "/proj", p.Dir().String())
	assert.Equal(t, "/proj/lib/a.ts", MustPath("/proj").Join("lib", "a.ts").String())
	assert.Equal(t, "/", MustPath("/").Dir().String())

	rel, err := MustPath("/proj/lib/server.ts").RelativeFrom(MustPath("/proj"))
	require.NoError(t, err)
	assert.Equal(t, "lib/server.ts", rel)

	_, err = ParsePath("relative/path")
	assert.ErrorIs(t, err, ErrNotAbsolute)
	_, err = ParsePath("")
	assert.ErrorIs(t, err, ErrNotAbsolute)
	mustPanic(t, "path is not absolute", func() { MustPath("nope") })

	assert.True(t, AbsolutePath{}.IsZero())
}

func TestMemoryReadFile(t *testing.T) {
	fs := sampleTree()

	r := fs.ReadFile(MustPath("/proj/index.ts"))
	require.True(t, r.IsOk())
	assert.Equal(t, "a typescript file", r.Value())

	assert.Equal(t, FileNotFound, failureType(t, fs.ReadFile(MustPath("/proj/missing.ts"))))
	assert.Equal(t, FileIsADir, failureType(t, fs.ReadFile(MustPath("/proj/lib"))))
}

func TestMemoryWriteFile(t *testing.T) {
	fs := sampleTree()

	require.True(t, fs.WriteFile(MustPath("/proj/new.ts"), "new").IsOk())
	assert.Equal(t, "new", fs.ReadFile(MustPath("/proj/new.ts")).Value())

	require.True(t, fs.WriteFile(MustPath("/proj/index.ts"), "changed").IsOk())
	assert.Equal(t, "changed", fs.ReadFile(MustPath("/proj/index.ts")).Value())

	assert.Equal(t, FileIsADir, failureType(t, fs.WriteFile(MustPath("/proj/lib"), "x")))
	assert.Equal(t, ParentNotFound, failureType(t, fs.WriteFile(MustPath("/nowhere/x.ts"), "x")))
}

func TestMemoryDirectories(t *testing.T) {
	fs := sampleTree()

	assert.Equal(t, AlreadyExists, failureType(t, fs.CreateDirectory(MustPath("/proj"), false)))
	assert.Equal(t, ParentNotFound, failureType(t, fs.CreateDirectory(MustPath("/a/b"), false)))
	require.True(t, fs.CreateDirectory(MustPath("/a/b/c"), true).IsOk())
	require.True(t, fs.CreateDirectory(MustPath("/a/b/c"), true).IsOk(), "recursive create is idempotent")
	assert.True(t, fs.Exists(MustPath("/a/b")))

	assert.Equal(t, DirNotEmpty, failureType(t, fs.RemoveDirectory(MustPath("/proj"), RemoveOptions{})))
	assert.Equal(t, DirNotFound, failureType(t, fs.RemoveDirectory(MustPath("/missing"), RemoveOptions{})))
	assert.Equal(t, NotADir, failureType(t, fs.RemoveDirectory(MustPath("/proj/index.ts"), RemoveOptions{})))
	assert.True(t, fs.RemoveDirectory(MustPath("/missing"), RemoveOptions{Force: true}).IsOk())

	require.True(t, fs.RemoveDirectory(MustPath("/empty"), RemoveOptions{}).IsOk())
	assert.False(t, fs.Exists(MustPath("/empty")))

	require.True(t, fs.RemoveDirectory(MustPath("/proj"), RemoveOptions{Recursive: true}).IsOk())
	assert.False(t, fs.Exists(MustPath("/proj/lib/server.ts")))
}

func TestMemoryListDirectory(t *testing.T) {
	fs := sampleTree()

	r := fs.ListDirectory(MustPath("/proj"))
	require.True(t, r.IsOk())

	var got []string
	for _, e := range r.Value() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{
		"file /proj/README.md",
		"file /proj/index.ts",
		"dir /proj/lib",
	}, got)

	assert.Equal(t, DirNotFound, failureType(t, fs.ListDirectory(MustPath("/missing"))))
	assert.Equal(t, NotADir, failureType(t, fs.ListDirectory(MustPath("/proj/index.ts"))))
}

func TestMemoryGet(t *testing.T) {
	fs := sampleTree()

	e, ok, err := fs.Get(MustPath("/proj/lib"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.IsDir())

	e, ok, err = fs.Get(MustPath("/proj/lib/server.ts"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.IsFile())

	_, ok, err = fs.Get(MustPath("/proj/nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTempDir(t *testing.T) {
	fs := sampleTree()

	dir, err := fs.CreateTempDir("taskkit-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dir.Path.Base(), "taskkit-"))
	assert.True(t, fs.Exists(dir.Path))

	require.True(t, fs.WriteFile(dir.Path.Join("a.txt"), "a").IsOk())
	require.NoError(t, dir.Close())
	assert.False(t, fs.Exists(dir.Path))
}

func TestNewMemoryRejectsBadGenesis(t *testing.T) {
	mustPanic(t, "must be a string or a directory", func() {
		NewMemory(Genesis{"/x": 42})
	})
}

func TestOSFileSystem(t *testing.T) {
	root := MustPath(t.TempDir())
	fs := NewOS()

	require.True(t, fs.CreateDirectory(root.Join("sub"), false).IsOk())
	require.True(t, fs.WriteFile(root.Join("sub", "f.txt"), "hello").IsOk())
	assert.Equal(t, "hello", fs.ReadFile(root.Join("sub", "f.txt")).Value())
	assert.Equal(t, FileNotFound, failureType(t, fs.ReadFile(root.Join("nope.txt"))))

	list := fs.ListDirectory(root)
	require.True(t, list.IsOk())
	require.Len(t, list.Value(), 1)
	assert.Equal(t, Entry{Kind: KindDir, Path: root.Join("sub")}, list.Value()[0])

	assert.Equal(t, DirNotEmpty, failureType(t, fs.RemoveDirectory(root.Join("sub"), RemoveOptions{})))
	require.True(t, fs.RemoveDirectory(root.Join("sub"), RemoveOptions{Recursive: true}).IsOk())
	assert.False(t, fs.Exists(root.Join("sub")))
}

func TestFailureError(t *testing.T) {
	f := newFailure(FileNotFound, MustPath("/a"))
	assert.Equal(t, "fs/file-not-found: /a", f.Error())
	assert.Equal(t, FileNotFound, f.Type())

	cause := fmt.Errorf("disk on fire")
	o := otherFailure(MustPath("/a"), cause)
	assert.Equal(t, "fs/other: disk on fire", o.Error())
	assert.ErrorIs(t, o, cause)
}
