package catalog

// ScanObserver receives progress notifications from a running scan.
// EntrySent and TraversalError are called from the producer goroutine,
// EntriesPersisted from the persister goroutine; implementations must be
// safe for concurrent use.
type ScanObserver interface {
	EntrySent(e *Entry)
	EntriesPersisted(n int)
	TraversalError(err *TraversalError)
	EntryDropped(err *ChannelError)
	ScanFinished(res *ScanResult, err error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) EntrySent(*Entry)                {}
func (NopObserver) EntriesPersisted(int)            {}
func (NopObserver) TraversalError(*TraversalError)  {}
func (NopObserver) EntryDropped(*ChannelError)      {}
func (NopObserver) ScanFinished(*ScanResult, error) {}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []ScanObserver

func (m MultiObserver) EntrySent(e *Entry) {
	for _, o := range m {
		o.EntrySent(e)
	}
}

func (m MultiObserver) EntriesPersisted(n int) {
	for _, o := range m {
		o.EntriesPersisted(n)
	}
}

func (m MultiObserver) TraversalError(err *TraversalError) {
	for _, o := range m {
		o.TraversalError(err)
	}
}

func (m MultiObserver) EntryDropped(err *ChannelError) {
	for _, o := range m {
		o.EntryDropped(err)
	}
}

func (m MultiObserver) ScanFinished(res *ScanResult, err error) {
	for _, o := range m {
		o.ScanFinished(res, err)
	}
}
