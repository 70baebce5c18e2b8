package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/hsclassify/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	f := &fakeOracle{
		classify: func(int, string, Hint) (string, error) { return "8471.30", nil },
		answer:   func(string, []Row) (string, error) { return "", errors.New("down") },
	}
	o := WithMetrics(f, m)

	text, err := o.Classify(context.Background(), "laptop", Hint{})
	require.NoError(t, err)
	assert.Equal(t, "8471.30", text)

	_, err = o.Answer(context.Background(), "q", nil)
	require.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.OracleLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OracleLatency.WithLabelValues("answer", "error").(prometheus.Histogram)))
}

func TestWithMetrics_NilMetrics(t *testing.T) {
	f := &fakeOracle{}
	assert.Same(t, Oracle(f), WithMetrics(f, nil))
}
