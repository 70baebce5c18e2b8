// Package metrics exposes Prometheus instrumentation for classification traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for oracle calls and batches.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Oracle call latency by operation (classify, answer) and outcome
	OracleLatency *prometheus.HistogramVec

	// Classifications by jurisdiction and outcome (ok, failed, skipped)
	Classifications *prometheus.CounterVec

	// Cache lookups by result (hit, miss, error)
	CacheLookups *prometheus.CounterVec

	// Rows per batch
	BatchRows prometheus.Histogram

	// Batches currently holding a slot
	ActiveBatches prometheus.Gauge
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hsc_oracle_call_duration_seconds",
			Help:    "Duration of classification oracle calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation", "outcome"}),

		Classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hsc_classifications_total",
			Help: "Classified descriptions by jurisdiction and outcome",
		}, []string{"jurisdiction", "outcome"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hsc_cache_lookups_total",
			Help: "Oracle answer cache lookups by result",
		}, []string{"result"}),

		BatchRows: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hsc_batch_rows",
			Help:    "Number of rows per batch request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		}),

		ActiveBatches: f.NewGauge(prometheus.GaugeOpts{
			Name: "hsc_batches_active",
			Help: "Batches currently being classified",
		}),
	}
}

// ObserveOracle records one oracle call.
func (m *Metrics) ObserveOracle(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OracleLatency.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// IncClassification records a classification outcome.
func (m *Metrics) IncClassification(jurisdiction, outcome string) {
	if m != nil {
		if jurisdiction == "" {
			jurisdiction = "none"
		}
		m.Classifications.WithLabelValues(jurisdiction, outcome).Inc()
	}
}

// IncCacheLookup records a cache hit, miss or error.
func (m *Metrics) IncCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// BatchStarted records a batch of n rows entering processing.
func (m *Metrics) BatchStarted(n int) {
	if m != nil {
		m.BatchRows.Observe(float64(n))
		m.ActiveBatches.Inc()
	}
}

// BatchFinished records a batch leaving processing.
func (m *Metrics) BatchFinished() {
	if m != nil {
		m.ActiveBatches.Dec()
	}
}
