package testutil

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"sync"

	"findv/internal/catalog"
)

// MockWalker is an in-memory directory tree implementing catalog.Walker.
// It walks in the same order as the OS walker: depth first, with the
// children of each directory in lexical order.
type MockWalker struct {
	mu       sync.Mutex
	dirs     map[string]bool
	children map[string][]string
	errs     map[string]error
}

// NewMockWalker creates an empty tree.
func NewMockWalker() *MockWalker {
	return &MockWalker{
		dirs:     make(map[string]bool),
		children: make(map[string][]string),
		errs:     make(map[string]error),
	}
}

// AddFile adds a file and any missing parent directories.
func (m *MockWalker) AddFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(filepath.Clean(path), false)
}

// AddDirectory adds a directory and any missing parent directories.
func (m *MockWalker) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(filepath.Clean(path), true)
}

// SetError makes reading path fail with err. A failing directory is still
// yielded as an entry, followed by the error, and its children are not
// visited.
func (m *MockWalker) SetError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[filepath.Clean(path)] = err
}

func (m *MockWalker) add(p string, isDir bool) {
	if _, ok := m.dirs[p]; ok {
		if isDir {
			m.dirs[p] = true
		}
		return
	}
	m.dirs[p] = isDir

	parent := filepath.Dir(p)
	if parent == p {
		return
	}
	m.add(parent, true)
	m.children[parent] = append(m.children[parent], filepath.Base(p))
}

func (m *MockWalker) Walk(root string, prune catalog.PruneFunc) iter.Seq2[catalog.WalkEntry, error] {
	return func(yield func(catalog.WalkEntry, error) bool) {
		m.mu.Lock()
		defer m.mu.Unlock()

		root = filepath.Clean(root)
		rootEntry := catalog.WalkEntry{Path: root, Name: filepath.Base(root), IsDir: m.dirs[root]}

		if err, ok := m.errs[root]; ok {
			yield(rootEntry, &catalog.TraversalError{Path: root, Err: err})
			return
		}
		if isDir, ok := m.dirs[root]; !ok || !isDir {
			yield(rootEntry, &catalog.TraversalError{Path: root, Err: fs.ErrNotExist})
			return
		}
		m.walkDir(root, root, prune, yield)
	}
}

// walkDir returns false once the walk must stop.
func (m *MockWalker) walkDir(root, dir string, prune catalog.PruneFunc, yield func(catalog.WalkEntry, error) bool) bool {
	names := slices.Clone(m.children[dir])
	slices.Sort(names)

	for _, name := range names {
		p := filepath.Join(dir, name)
		rel, _ := filepath.Rel(root, p)
		we := catalog.WalkEntry{Path: p, RelPath: rel, Name: name, IsDir: m.dirs[p]}

		if we.IsDir && prune != nil && prune(we) {
			continue
		}

		err, failing := m.errs[p]
		if failing {
			if we.IsDir && !yield(we, nil) {
				return false
			}
			te := &catalog.TraversalError{Path: p, Err: err}
			if !yield(we, te) || !te.Recoverable() {
				return false
			}
			continue
		}

		if !yield(we, nil) {
			return false
		}
		if we.IsDir && !m.walkDir(root, p, prune, yield) {
			return false
		}
	}
	return true
}

var _ catalog.Walker = (*MockWalker)(nil)
