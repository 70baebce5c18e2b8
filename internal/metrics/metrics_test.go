package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncClassification("US", "ok")
	m.IncClassification("US", "ok")
	m.IncClassification("", "failed")
	m.IncCacheLookup("hit")
	m.ObserveOracle("classify", time.Second, errors.New("boom"))
	m.BatchStarted(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Classifications.WithLabelValues("US", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Classifications.WithLabelValues("none", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveBatches))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OracleLatency))

	m.BatchFinished()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveBatches))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncClassification("US", "ok")
		m.IncCacheLookup("miss")
		m.ObserveOracle("answer", time.Millisecond, nil)
		m.BatchStarted(1)
		m.BatchFinished()
	})
}
