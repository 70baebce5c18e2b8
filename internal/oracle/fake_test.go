package oracle

import (
	"context"
	"sync/atomic"
)

// fakeOracle scripts answers for decorator tests.
type fakeOracle struct {
	classify func(n int, description string, hint Hint) (string, error)
	answer   func(question string, rows []Row) (string, error)
	calls    atomic.Int32
}

func (f *fakeOracle) Classify(_ context.Context, description string, hint Hint) (string, error) {
	n := int(f.calls.Add(1))
	return f.classify(n, description, hint)
}

func (f *fakeOracle) Answer(_ context.Context, question string, rows []Row) (string, error) {
	f.calls.Add(1)
	return f.answer(question, rows)
}
