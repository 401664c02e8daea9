package catalog

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrEmptyPattern is returned by Find when no search term was given.
	ErrEmptyPattern = errors.New("search pattern is empty")

	// ErrUnknownMatchMode is returned for a query match mode the store does not support.
	ErrUnknownMatchMode = errors.New("unknown match mode")
)

// TraversalError reports a failure to read one path during a walk.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traversing %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// Recoverable reports whether the walk can continue past this error.
// Only permission failures are recoverable; the unreadable subtree is skipped.
func (e *TraversalError) Recoverable() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// ChannelError reports that an accepted entry could not be handed to the persister.
type ChannelError struct {
	Path string
	Err  error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("sending %s to persister: %v", e.Path, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// StorageError reports a failure to open, execute or commit a catalog
// transaction. The failed operation left no partial rows behind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
