package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// ScanResult summarizes one scan.
type ScanResult struct {
	Root      string
	Sent      int64 // entries accepted and handed to the persister
	Persisted int64 // entries committed
	Rejected  int64 // entries turned down by the filter
	Skipped   int64 // unreadable paths skipped
	Elapsed   time.Duration
}

// Scan walks root (or the configured default root when empty) and records
// every accepted entry in the store.
//
// The walk runs on its own goroutine and feeds a bounded channel drained by
// the calling side's persister; entries are committed in the order they were
// sent. A storage failure stops the producer and is returned. A fatal
// traversal error stops the walk, lets the persister finish what was already
// queued, and is then returned. Entries committed before an error remain in
// the catalog. observer may be nil.
func (s *Service) Scan(ctx context.Context, root string, observer ScanObserver) (*ScanResult, error) {
	if root == "" {
		root = s.opts.DefaultRoot
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}
	if observer == nil {
		observer = NopObserver{}
	}

	filter := s.filter
	if s.ignoreFor != nil {
		m, err := s.ignoreFor(absRoot)
		if err != nil {
			return nil, fmt.Errorf("loading ignore rules: %w", err)
		}
		filter = filter.WithIgnore(m)
	}

	s.logger.Info("scan started", "root", absRoot, "batch_size", s.opts.BatchSize, "channel_size", s.opts.ChannelSize)
	start := s.clock.Now()

	entries := make(chan *Entry, s.opts.ChannelSize)
	producer := NewProducer(s.walker, filter, s.clock, s.idgen, s.opts.Hostname, s.logger, observer)
	persister := NewPersister(s.store, s.opts.BatchSize, s.logger, observer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return producer.Run(gctx, absRoot, entries)
	})
	g.Go(func() error {
		return persister.Drain(entries)
	})
	err = g.Wait()

	res := &ScanResult{
		Root:      absRoot,
		Sent:      producer.Sent(),
		Persisted: persister.Persisted(),
		Rejected:  producer.Rejected(),
		Skipped:   producer.Skipped(),
		Elapsed:   s.clock.Now().Sub(start),
	}
	observer.ScanFinished(res, err)

	if err != nil {
		s.logger.Error("scan failed", "root", absRoot, "total", res.Sent, "persisted", res.Persisted, "error", err)
		return res, fmt.Errorf("scanning %s: %w", absRoot, err)
	}

	s.logger.Info("scan finished", "root", absRoot, "total", res.Sent, "persisted", res.Persisted, "elapsed", res.Elapsed)
	return res, nil
}
