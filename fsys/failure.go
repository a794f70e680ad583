package fsys

import "fmt"

// Failure kinds reported by [FileSystem] operations. They are the values
// of [Failure.Type].
const (
	FileNotFound   = "fs/file-not-found"
	FileIsADir     = "fs/file-is-a-dir"
	DirNotFound    = "fs/dir-not-found"
	NotADir        = "fs/not-a-dir"
	DirNotEmpty    = "fs/dir-not-empty"
	AlreadyExists  = "fs/already-exists"
	ParentNotFound = "fs/parent-not-found"
	Other          = "fs/other"
)

// Failure is the typed failure carried by filesystem Results.
// Path is set for every kind except [Other], which carries Cause instead.
type Failure struct {
	Kind  string
	Path  AbsolutePath
	Cause error
}

func newFailure(kind string, path AbsolutePath) *Failure {
	return &Failure{Kind: kind, Path: path}
}

func otherFailure(path AbsolutePath, cause error) *Failure {
	return &Failure{Kind: Other, Path: path, Cause: cause}
}

// Type implements result.TaggedError.
func (f *Failure) Type() string { return f.Kind }

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Path)
}

func (f *Failure) Unwrap() error { return f.Cause }
