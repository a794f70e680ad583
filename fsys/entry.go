package fsys

// EntryKind tells files and directories apart.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
)

func (k EntryKind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry is a file or a directory found on a [FileSystem].
type Entry struct {
	Kind EntryKind
	Path AbsolutePath
}

// IsDir reports whether e is a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDir }

// IsFile reports whether e is a regular file.
func (e Entry) IsFile() bool { return e.Kind == KindFile }

func (e Entry) String() string {
	return e.Kind.String() + " " + e.Path.String()
}
