// Package metrics records scan and catalog metrics with Prometheus.
//
// findv is a CLI, so nothing is served over HTTP. After a scan the registry
// is written to a textfile that node_exporter's textfile collector picks up.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"findv/internal/catalog"
)

// ScanMetrics implements catalog.ScanObserver on a private registry.
type ScanMetrics struct {
	registry *prometheus.Registry
	clock    catalog.Clock

	SentTotal       prometheus.Counter
	PersistedTotal  prometheus.Counter
	DroppedTotal    prometheus.Counter
	TraversalErrors *prometheus.CounterVec

	LastRunTimestamp prometheus.Gauge
	LastRunDuration  prometheus.Gauge
	LastRunSuccess   prometheus.Gauge

	CatalogFiles  prometheus.Gauge
	CatalogEvents prometheus.Gauge
}

// NewScanMetrics creates the scan metrics on a fresh registry.
// clock stamps the end of each run; nil selects the real clock.
func NewScanMetrics(clock catalog.Clock) *ScanMetrics {
	if clock == nil {
		clock = catalog.RealClock{}
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &ScanMetrics{
		registry: reg,
		clock:    clock,

		SentTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "findv_scan_entries_sent_total",
			Help: "Entries accepted by the filter and queued for persistence",
		}),
		PersistedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "findv_scan_entries_persisted_total",
			Help: "Entries committed to the catalog",
		}),
		DroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "findv_scan_entries_dropped_total",
			Help: "Accepted entries that could not be handed to the persister",
		}),
		TraversalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "findv_scan_traversal_errors_total",
			Help: "Paths that could not be read during a walk",
		}, []string{"recoverable"}),

		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "findv_scan_last_run_timestamp_seconds",
			Help: "Unix time the last scan finished",
		}),
		LastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "findv_scan_last_run_duration_seconds",
			Help: "Wall-clock duration of the last scan",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "findv_scan_last_run_success",
			Help: "1 if the last scan completed without error, 0 otherwise",
		}),

		CatalogFiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "findv_catalog_files",
			Help: "Current-state entries in the catalog",
		}),
		CatalogEvents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "findv_catalog_events",
			Help: "Events in the catalog history",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *ScanMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ScanMetrics) EntrySent(*catalog.Entry) {
	m.SentTotal.Inc()
}

func (m *ScanMetrics) EntriesPersisted(n int) {
	m.PersistedTotal.Add(float64(n))
}

func (m *ScanMetrics) TraversalError(err *catalog.TraversalError) {
	m.TraversalErrors.WithLabelValues(strconv.FormatBool(err.Recoverable())).Inc()
}

func (m *ScanMetrics) EntryDropped(*catalog.ChannelError) {
	m.DroppedTotal.Inc()
}

func (m *ScanMetrics) ScanFinished(res *catalog.ScanResult, err error) {
	m.LastRunTimestamp.Set(float64(m.clock.Now().Unix()))
	if res != nil {
		m.LastRunDuration.Set(res.Elapsed.Seconds())
	}
	if err != nil {
		m.LastRunSuccess.Set(0)
	} else {
		m.LastRunSuccess.Set(1)
	}
}

// RecordCatalog sets the catalog size gauges.
func (m *ScanMetrics) RecordCatalog(r *catalog.CountReport) {
	m.CatalogFiles.Set(float64(r.Files))
	m.CatalogEvents.Set(float64(r.Events))
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically.
func (m *ScanMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

var _ catalog.ScanObserver = (*ScanMetrics)(nil)
