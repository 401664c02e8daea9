package catalog

import (
	"context"
	"errors"
	"sync/atomic"
)

// Producer walks a root path, filters what it finds and sends a new Entry
// for every accepted path on a bounded channel. A full channel blocks the
// producer until the persister catches up.
type Producer struct {
	walker   Walker
	filter   *Filter
	clock    Clock
	idgen    IDGenerator
	hostname string
	logger   Logger
	observer ScanObserver

	sent     atomic.Int64
	rejected atomic.Int64
	skipped  atomic.Int64
}

// NewProducer creates a Producer. hostname tags every entry it creates.
func NewProducer(walker Walker, filter *Filter, clock Clock, idgen IDGenerator, hostname string, logger Logger, observer ScanObserver) *Producer {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Producer{
		walker:   walker,
		filter:   filter,
		clock:    clock,
		idgen:    idgen,
		hostname: hostname,
		logger:   logger,
		observer: observer,
	}
}

// Run walks root and sends accepted entries on out. out is always closed
// when Run returns, so entries already queued can still be drained.
//
// Permission failures are logged and skipped. Any other traversal error ends
// the walk and is returned. If ctx is cancelled while an entry is waiting to
// be sent, that entry is lost and Run returns a *ChannelError.
func (p *Producer) Run(ctx context.Context, root string, out chan<- *Entry) error {
	defer close(out)

	for we, err := range p.walker.Walk(root, p.filter.Excluded) {
		if err != nil {
			var te *TraversalError
			if !errors.As(err, &te) {
				te = &TraversalError{Path: we.Path, Err: err}
			}
			p.observer.TraversalError(te)

			if te.Recoverable() {
				p.skipped.Add(1)
				p.logger.Warn("skipping unreadable path", "path", te.Path, "error", te.Err)
				continue
			}
			p.logger.Error("walk aborted", "path", te.Path, "error", te.Err)
			return te
		}

		if !p.filter.Accept(we) {
			p.rejected.Add(1)
			continue
		}

		entry := NewEntry(p.idgen.New(), we.Path, we.Name, we.IsDir, p.hostname, p.clock.Now())

		select {
		case out <- entry:
			p.sent.Add(1)
			p.observer.EntrySent(entry)
		case <-ctx.Done():
			cerr := &ChannelError{Path: entry.FullPath, Err: context.Cause(ctx)}
			p.observer.EntryDropped(cerr)
			p.logger.Error("send channel error", "path", entry.FullPath, "error", cerr.Err)
			return cerr
		}
	}

	return nil
}

// Sent returns the number of entries handed to the channel so far.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Rejected returns the number of walked entries the filter turned down.
func (p *Producer) Rejected() int64 { return p.rejected.Load() }

// Skipped returns the number of recoverable traversal errors encountered.
func (p *Producer) Skipped() int64 { return p.skipped.Load() }
