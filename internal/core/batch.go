package core

// batch.go classifies many descriptions in one request.
//
// Rows are independent: each is classified on its own and written to its own
// slot in the result slice, so output order always equals input order no
// matter how the worker pool schedules them. A failed row never aborts the
// batch; only the batch context (timeout, client gone) stops it, in which case
// unprocessed rows are reported as failed.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/hsclassify/internal/hscode"
	"github.com/JonMunkholm/hsclassify/internal/logging"
)

// Status tags a batch row outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Item is one description to classify.
type Item struct {
	Description  string
	Jurisdiction hscode.Jurisdiction
}

// RowResult is the outcome for one Item. Description is the input as sent.
// Code and Confidence are set only when Status is ok; Error only when it is not.
type RowResult struct {
	Index        int                 `json:"index"`
	Description  string              `json:"description"`
	Jurisdiction hscode.Jurisdiction `json:"country,omitempty"`
	Status       Status              `json:"status"`
	Code         string              `json:"hsc_code,omitempty"`
	Confidence   float64             `json:"confidence"`
	Error        string              `json:"error,omitempty"`
}

// BatchReport summarizes a batch.
type BatchReport struct {
	ID             string        `json:"batch_id"`
	Rows           []RowResult   `json:"results"`
	TotalProcessed int           `json:"total_processed"`
	Successful     int           `json:"successful"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	Duration       time.Duration `json:"-"`
}

// Items pairs every description with the same jurisdiction.
func Items(descriptions []string, j hscode.Jurisdiction) []Item {
	items := make([]Item, len(descriptions))
	for i, d := range descriptions {
		items[i] = Item{Description: d, Jurisdiction: j}
	}
	return items
}

// ClassifyBatch classifies items with bounded parallelism.
//
// It waits for a batch slot first and returns ErrTooManyBatches when none
// frees up in time. Batches larger than the configured row limit are rejected
// with ErrTooManyRows before any oracle call.
func (s *Service) ClassifyBatch(ctx context.Context, items []Item) (*BatchReport, error) {
	if len(items) > s.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(items), s.maxRows)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	s.metrics.BatchStarted(len(items))
	defer s.metrics.BatchFinished()

	ctx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	report := &BatchReport{
		ID:   uuid.New().String(),
		Rows: make([]RowResult, len(items)),
	}
	log := logging.FromContext(ctx).With("batch_id", report.ID)
	log.Info("batch started", "rows", len(items), "workers", s.workers)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, item := range items {
		g.Go(func() error {
			report.Rows[i] = s.classifyRow(gctx, i, item)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	report.Duration = time.Since(start)
	report.TotalProcessed = len(report.Rows)
	for _, r := range report.Rows {
		switch r.Status {
		case StatusOK:
			report.Successful++
		case StatusFailed:
			report.Failed++
		case StatusSkipped:
			report.Skipped++
		}
	}

	log.Info("batch finished",
		"successful", report.Successful,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	return report, nil
}

func (s *Service) classifyRow(ctx context.Context, i int, item Item) RowResult {
	row := RowResult{
		Index:        i,
		Description:  item.Description,
		Jurisdiction: item.Jurisdiction.Normalize(),
	}

	if err := ctx.Err(); err != nil {
		row.Status = StatusFailed
		row.Error = ErrOracleUnavailable.Error()
		s.metrics.IncClassification(string(row.Jurisdiction), string(StatusFailed))
		return row
	}

	c, err := s.Classify(ctx, item.Description, item.Jurisdiction)
	switch {
	case err == nil:
		row.Status = StatusOK
		row.Code = c.Code
		row.Confidence = c.Confidence
	case errors.Is(err, ErrEmptyDescription):
		row.Status = StatusSkipped
		row.Error = ErrEmptyDescription.Error()
	default:
		row.Status = StatusFailed
		row.Error = ErrOracleUnavailable.Error()
	}
	return row
}
