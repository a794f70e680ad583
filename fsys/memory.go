package fsys

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
)

// Genesis describes an initial directory tree. Keys are paths relative to
// the enclosing directory (absolute at the top level); a string value is a
// file's contents, a nested Genesis or map[string]any is a directory.
//
//	fsys.NewMemory(fsys.Genesis{
//	    "/proj": fsys.Genesis{
//	        "index.ts": "export {}",
//	        "lib":      fsys.Genesis{"server.ts": ""},
//	    },
//	})
type Genesis map[string]any

// NewMemory returns an in-memory [FileSystem] seeded from genesis.
// Intermediate directories are created as needed. NewMemory panics on a
// value that is neither a string nor a directory map.
func NewMemory(genesis Genesis) *Afero {
	a := New(afero.NewMemMapFs())
	root := MustPath("/")
	if err := a.fs.MkdirAll(root.String(), dirPerm); err != nil {
		panic(fmt.Sprintf("fsys: create root: %v", err))
	}
	a.seed(root, genesis)
	return a
}

func (a *Afero) seed(cwd AbsolutePath, genesis map[string]any) {
	// Sorted for deterministic panics on bad input.
	keys := make([]string, 0, len(genesis))
	for k := range genesis {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := cwd.Join(k)
		switch v := genesis[k].(type) {
		case string:
			a.mustOk(a.CreateDirectory(path.Dir(), true).ToError())
			a.mustOk(a.WriteFile(path, v).ToError())
		case Genesis:
			a.mustOk(a.CreateDirectory(path, true).ToError())
			a.seed(path, v)
		case map[string]any:
			a.mustOk(a.CreateDirectory(path, true).ToError())
			a.seed(path, v)
		default:
			panic(fmt.Sprintf("fsys: genesis value for %s must be a string or a directory, got %T", path, v))
		}
	}
}

func (a *Afero) mustOk(_ any, err error) {
	if err != nil {
		panic(fmt.Sprintf("fsys: seed: %v", err))
	}
}
