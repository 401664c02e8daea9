package catalog

import (
	"fmt"
	"sync/atomic"
)

// Persister drains entries from the scan channel into a Store.
//
// With a batch size of 0 or 1 every entry is saved in its own transaction.
// Larger batch sizes accumulate entries and save each batch in a single
// transaction; a final partial batch is flushed when the channel closes.
type Persister struct {
	store     Store
	batchSize int
	logger    Logger
	observer  ScanObserver

	persisted atomic.Int64
}

// NewPersister creates a Persister.
func NewPersister(store Store, batchSize int, logger Logger, observer ScanObserver) *Persister {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Persister{
		store:     store,
		batchSize: batchSize,
		logger:    logger,
		observer:  observer,
	}
}

// Drain receives entries until in is closed. The first storage failure stops
// the drain and is returned; entries still in the channel are not persisted.
// The caller is responsible for stopping the producer in that case.
func (p *Persister) Drain(in <-chan *Entry) error {
	if p.batchSize <= 1 {
		return p.drainSingle(in)
	}
	return p.drainBulk(in)
}

// Persisted returns the number of entries committed so far.
func (p *Persister) Persisted() int64 { return p.persisted.Load() }

func (p *Persister) drainSingle(in <-chan *Entry) error {
	for e := range in {
		p.logger.Debug("got entry", "name", e.FileName)
		if err := p.store.Save(e); err != nil {
			return fmt.Errorf("saving %s: %w", e.FullPath, err)
		}
		p.persisted.Add(1)
		p.observer.EntriesPersisted(1)
	}
	return nil
}

func (p *Persister) drainBulk(in <-chan *Entry) error {
	batch := make([]*Entry, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.store.SaveBulk(batch); err != nil {
			return fmt.Errorf("saving batch of %d entries: %w", len(batch), err)
		}
		p.persisted.Add(int64(len(batch)))
		p.observer.EntriesPersisted(len(batch))
		p.logger.Debug("batch committed", "size", len(batch), "total", p.persisted.Load())
		batch = batch[:0]
		return nil
	}

	for e := range in {
		batch = append(batch, e)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
