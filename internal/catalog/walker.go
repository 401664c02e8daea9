package catalog

import "iter"

// WalkEntry is one filesystem entry produced by a Walker.
type WalkEntry struct {
	Path    string // absolute path
	RelPath string // path relative to the walk root
	Name    string // base name
	IsDir   bool
}

// PruneFunc is consulted for every directory before it is descended.
// Returning true skips the directory and everything beneath it.
type PruneFunc func(dir WalkEntry) bool

// Walker performs a recursive traversal of a root path.
//
// The returned sequence yields every reachable descendant of root exactly
// once (root itself is not yielded). A failure to read a path is yielded as a
// *TraversalError paired with the entry it concerns. After a recoverable
// error the walk continues past the unreadable subtree; after any other error
// the sequence ends. Each call starts a fresh walk.
type Walker interface {
	Walk(root string, prune PruneFunc) iter.Seq2[WalkEntry, error]
}
