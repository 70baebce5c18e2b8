package core

// batch_limiter.go bounds how many batches classify at the same time.
//
// Each batch fans out to the oracle with its own worker pool, so the number of
// in-flight model calls is roughly MaxConcurrent * Workers. When all slots are
// taken a new batch waits up to maxWait and then fails with ErrTooManyBatches.
// WaitForDrain lets shutdown wait for running batches.

import (
	"context"
	"time"
)

// DefaultMaxConcurrentBatches is the default limit for parallel batches.
const DefaultMaxConcurrentBatches = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// BatchLimiter is a counting semaphore for batch classification.
type BatchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewBatchLimiter allows at most maxConcurrent simultaneous batches.
// Callers that cannot get a slot within maxWait receive ErrTooManyBatches.
func NewBatchLimiter(maxConcurrent int, maxWait time.Duration) *BatchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBatches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &BatchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait.
// The caller must call Release exactly once after a nil return.
func (l *BatchLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyBatches
	}
}

// TryAcquire takes a slot without blocking.
func (l *BatchLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *BatchLimiter) Release() {
	<-l.slots
}

// Active returns the number of running batches.
func (l *BatchLimiter) Active() int {
	return len(l.slots)
}

// WaitForDrain blocks until no batch is running or ctx is done.
func (l *BatchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// BatchLimiterStatus is a point-in-time view of the limiter.
type BatchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *BatchLimiter) Status() BatchLimiterStatus {
	active := len(l.slots)
	return BatchLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
