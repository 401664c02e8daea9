package testutil

import (
	"errors"
	"sync"

	"findv/internal/catalog"
)

// ErrInjected is returned by FailingStore once its budget is used up.
var ErrInjected = errors.New("injected storage failure")

// FailingStore wraps a catalog.Store and fails every Save and SaveBulk call
// after the first okCalls succeed. Failures are wrapped in a
// *catalog.StorageError like a real store's.
type FailingStore struct {
	catalog.Store

	mu      sync.Mutex
	okCalls int
	calls   int
}

// NewFailingStore wraps store.
func NewFailingStore(store catalog.Store, okCalls int) *FailingStore {
	return &FailingStore{Store: store, okCalls: okCalls}
}

func (f *FailingStore) Save(e *catalog.Entry) error {
	if err := f.next("save"); err != nil {
		return err
	}
	return f.Store.Save(e)
}

func (f *FailingStore) SaveBulk(entries []*catalog.Entry) error {
	if err := f.next("save bulk"); err != nil {
		return err
	}
	return f.Store.SaveBulk(entries)
}

// Calls returns how many save calls were attempted.
func (f *FailingStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FailingStore) next(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls > f.okCalls {
		return &catalog.StorageError{Op: op, Err: ErrInjected}
	}
	return nil
}
