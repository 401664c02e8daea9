package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"findv/internal/catalog"
)

// DefaultProgressInterval throttles progress redraws.
const DefaultProgressInterval = 250 * time.Millisecond

// ProgressReporter redraws a single "scanned N entries" line while a scan
// runs. It is meant for a terminal; the caller decides whether w is one.
type ProgressReporter struct {
	catalog.NopObserver

	w        io.Writer
	clock    catalog.Clock
	interval time.Duration

	mu        sync.Mutex
	sent      int64
	persisted int64
	lastDraw  time.Time
}

// NewProgressReporter creates a reporter writing to w.
func NewProgressReporter(w io.Writer, clock catalog.Clock, interval time.Duration) *ProgressReporter {
	if clock == nil {
		clock = catalog.RealClock{}
	}
	return &ProgressReporter{w: w, clock: clock, interval: interval}
}

func (p *ProgressReporter) EntrySent(*catalog.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent++
	p.maybeDraw()
}

func (p *ProgressReporter) EntriesPersisted(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persisted += int64(n)
	p.maybeDraw()
}

func (p *ProgressReporter) ScanFinished(res *catalog.ScanResult, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res == nil {
		fmt.Fprintln(p.w)
		return
	}
	status := "done"
	if err != nil {
		status = "failed"
	}
	fmt.Fprintf(p.w, "\rscanned %s entries, %s saved in %s (%s)\n",
		humanize.Comma(res.Sent),
		humanize.Comma(res.Persisted),
		res.Elapsed.Truncate(time.Millisecond),
		status,
	)
}

// maybeDraw requires p.mu.
func (p *ProgressReporter) maybeDraw() {
	now := p.clock.Now()
	if !p.lastDraw.IsZero() && now.Sub(p.lastDraw) < p.interval {
		return
	}
	p.lastDraw = now
	fmt.Fprintf(p.w, "\rscanned %s entries, %s saved", humanize.Comma(p.sent), humanize.Comma(p.persisted))
}
