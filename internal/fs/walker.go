package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"findv/internal/catalog"
)

// OSWalker walks the real filesystem with filepath.WalkDir.
// Symlinks are reported as entries but never followed.
type OSWalker struct{}

// NewOSWalker creates a walker over the real filesystem.
func NewOSWalker() *OSWalker {
	return &OSWalker{}
}

// Walk yields every descendant of root in lexical order. Directories for
// which prune returns true are neither yielded nor descended. Unreadable
// directories are yielded first as entries and then again with a
// *catalog.TraversalError. After a non-permission error the walk stops.
func (w *OSWalker) Walk(root string, prune catalog.PruneFunc) iter.Seq2[catalog.WalkEntry, error] {
	return func(yield func(catalog.WalkEntry, error) bool) {
		root = filepath.Clean(root)

		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			we := newWalkEntry(root, p, d)

			if err != nil {
				te := &catalog.TraversalError{Path: p, Err: err}
				if !yield(we, te) || !te.Recoverable() {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if p == root {
				return nil
			}

			if we.IsDir && prune != nil && prune(we) {
				return filepath.SkipDir
			}

			if !yield(we, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func newWalkEntry(root, p string, d fs.DirEntry) catalog.WalkEntry {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		rel = ""
	}
	return catalog.WalkEntry{
		Path:    p,
		RelPath: rel,
		Name:    filepath.Base(p),
		IsDir:   d != nil && d.IsDir(),
	}
}

var _ catalog.Walker = (*OSWalker)(nil)
