package catalog_test

import (
	"sync"
	"testing"

	"findv/internal/catalog"
	"findv/internal/database"
	"findv/internal/testutil"
)

// recordingObserver captures every notification from a scan.
type recordingObserver struct {
	mu         sync.Mutex
	sent       []string
	persisted  int
	travErrs   []*catalog.TraversalError
	dropped    []*catalog.ChannelError
	finished   int
	lastResult *catalog.ScanResult
	lastErr    error
}

func (o *recordingObserver) EntrySent(e *catalog.Entry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, e.FileName)
}

func (o *recordingObserver) EntriesPersisted(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.persisted += n
}

func (o *recordingObserver) TraversalError(err *catalog.TraversalError) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.travErrs = append(o.travErrs, err)
}

func (o *recordingObserver) EntryDropped(err *catalog.ChannelError) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped = append(o.dropped, err)
}

func (o *recordingObserver) ScanFinished(res *catalog.ScanResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished++
	o.lastResult = res
	o.lastErr = err
}

// recordingStore logs the IDs and batch sizes handed to the wrapped store.
type recordingStore struct {
	catalog.Store

	mu      sync.Mutex
	ids     []string
	batches []int
	singles int
}

func (s *recordingStore) Save(e *catalog.Entry) error {
	s.mu.Lock()
	s.ids = append(s.ids, e.ID)
	s.singles++
	s.mu.Unlock()
	return s.Store.Save(e)
}

func (s *recordingStore) SaveBulk(entries []*catalog.Entry) error {
	s.mu.Lock()
	for _, e := range entries {
		s.ids = append(s.ids, e.ID)
	}
	s.batches = append(s.batches, len(entries))
	s.mu.Unlock()
	return s.Store.SaveBulk(entries)
}

// mediaFilter accepts mp4/mp3 files and every visible directory.
func mediaFilter() *catalog.Filter {
	return catalog.NewFilter(nil, []string{"mp4", "mp3"}, nil)
}

// scenarioTree builds /root/a.mp4, /root/.hidden.mp4, /root/sub/, /root/sub/b.txt.
func scenarioTree() *testutil.MockWalker {
	w := testutil.NewMockWalker()
	w.AddFile("/root/a.mp4")
	w.AddFile("/root/.hidden.mp4")
	w.AddDirectory("/root/sub")
	w.AddFile("/root/sub/b.txt")
	return w
}

func newTestService(t *testing.T, store catalog.Store, walker catalog.Walker, opts catalog.Options) *catalog.Service {
	t.Helper()
	if opts.Hostname == "" {
		opts.Hostname = "nas:media"
	}
	if opts.HostID == "" {
		opts.HostID = "host-1"
	}
	return catalog.NewService(store, walker, mediaFilter(), catalog.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator(), opts)
}

func counts(t *testing.T, store catalog.Store) (files, events int64) {
	t.Helper()
	files, err := store.FileCount()
	if err != nil {
		t.Fatalf("FileCount() error = %v", err)
	}
	events, err = store.EventCount()
	if err != nil {
		t.Fatalf("EventCount() error = %v", err)
	}
	return files, events
}

func names(entries []*catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.FileName
	}
	return out
}

var _ catalog.Store = (*database.SQLiteDatabase)(nil)
