package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/hsclassify/internal/config"
	"github.com/JonMunkholm/hsclassify/internal/oracle"
)

// fakeOracle answers from scripted functions and counts calls.
type fakeOracle struct {
	classify func(ctx context.Context, description string, hint oracle.Hint) (string, error)
	answer   func(ctx context.Context, question string, rows []oracle.Row) (string, error)
	calls    atomic.Int64
}

func (f *fakeOracle) Classify(ctx context.Context, description string, hint oracle.Hint) (string, error) {
	f.calls.Add(1)
	return f.classify(ctx, description, hint)
}

func (f *fakeOracle) Answer(ctx context.Context, question string, rows []oracle.Row) (string, error) {
	f.calls.Add(1)
	return f.answer(ctx, question, rows)
}

// answering returns a fakeOracle whose Classify always says answer.
func answering(answer string) *fakeOracle {
	return &fakeOracle{
		classify: func(context.Context, string, oracle.Hint) (string, error) { return answer, nil },
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Batch: config.BatchConfig{
			MaxFileSize:   1 << 20,
			MaxRows:       100,
			MaxConcurrent: 2,
			MaxWaitTime:   100 * time.Millisecond,
			Workers:       4,
			Timeout:       5 * time.Second,
		},
	}
}

func newTestService(o oracle.Oracle) *Service {
	svc, err := NewService(o, testConfig(), nil)
	if err != nil {
		panic(err)
	}
	return svc
}
