package oracle

import (
	"context"
	"time"

	"github.com/JonMunkholm/hsclassify/internal/metrics"
)

type instrumented struct {
	next    Oracle
	metrics *metrics.Metrics
}

// WithMetrics records latency and outcome of every call that reaches next.
func WithMetrics(next Oracle, m *metrics.Metrics) Oracle {
	if m == nil {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

func (i *instrumented) Classify(ctx context.Context, description string, hint Hint) (string, error) {
	start := time.Now()
	text, err := i.next.Classify(ctx, description, hint)
	i.metrics.ObserveOracle("classify", time.Since(start), err)
	return text, err
}

func (i *instrumented) Answer(ctx context.Context, question string, rows []Row) (string, error) {
	start := time.Now()
	text, err := i.next.Answer(ctx, question, rows)
	i.metrics.ObserveOracle("answer", time.Since(start), err)
	return text, err
}
