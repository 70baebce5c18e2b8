package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/hsclassify/internal/config"
	"github.com/JonMunkholm/hsclassify/internal/hscode"
	"github.com/JonMunkholm/hsclassify/internal/logging"
	"github.com/JonMunkholm/hsclassify/internal/metrics"
	"github.com/JonMunkholm/hsclassify/internal/oracle"
)

// Confidence levels attached to a classification.
const (
	// ConfidenceMatched means the answer held a well-formed 6, 8 or 10 digit run.
	ConfidenceMatched = 1.0

	// ConfidenceFallback means the code was built from whatever digits the
	// answer contained.
	ConfidenceFallback = 0.5
)

// Default batch settings used when config leaves them unset.
const (
	DefaultWorkers      = 8
	DefaultMaxRows      = 1000
	DefaultBatchTimeout = 10 * time.Minute
)

// Service provides classification, batch and Q&A operations.
// It is safe for concurrent use.
type Service struct {
	oracle    oracle.Oracle
	formatter *hscode.Formatter
	limiter   *BatchLimiter
	metrics   *metrics.Metrics

	workers      int
	maxRows      int
	maxFileSize  int64
	batchTimeout time.Duration
}

// Classification is the outcome of classifying one description.
type Classification struct {
	Description  string
	Jurisdiction hscode.Jurisdiction
	Code         string
	Raw          string
	Matched      bool
	Confidence   float64
}

// NewService creates a Service backed by o. Jurisdiction lengths configured in
// cfg.Codes override the built-in table.
func NewService(o oracle.Oracle, cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	if o == nil {
		return nil, errors.New("oracle is required")
	}

	lengths, err := cfg.Codes.Lengths()
	if err != nil {
		return nil, fmt.Errorf("jurisdiction lengths: %w", err)
	}

	s := &Service{
		oracle:       o,
		formatter:    hscode.NewFormatter(hscode.DefaultTable().WithLengths(lengths)),
		limiter:      NewBatchLimiter(cfg.Batch.MaxConcurrent, cfg.Batch.MaxWaitTime),
		metrics:      m,
		workers:      cfg.Batch.Workers,
		maxRows:      cfg.Batch.MaxRows,
		maxFileSize:  cfg.Batch.MaxFileSize,
		batchTimeout: cfg.Batch.Timeout,
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	if s.maxRows <= 0 {
		s.maxRows = DefaultMaxRows
	}
	if s.batchTimeout <= 0 {
		s.batchTimeout = DefaultBatchTimeout
	}
	return s, nil
}

// Table returns the jurisdiction table used for formatting.
func (s *Service) Table() *hscode.Table {
	return s.formatter.Table()
}

// Format runs the formatter without calling the oracle.
func (s *Service) Format(raw string, j hscode.Jurisdiction) string {
	return s.formatter.Format(raw, j)
}

// MaxFileSize returns the largest workbook accepted for upload.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// BatchStatus returns the batch limiter state.
func (s *Service) BatchStatus() BatchLimiterStatus {
	return s.limiter.Status()
}

// WaitForBatches blocks until running batches finish or ctx is done.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Classify asks the oracle for a code and formats it for j.
// An empty j formats without length enforcement.
func (s *Service) Classify(ctx context.Context, description string, j hscode.Jurisdiction) (Classification, error) {
	c, err := s.classify(ctx, description, j)
	switch {
	case err == nil:
		s.metrics.IncClassification(string(c.Jurisdiction), string(StatusOK))
	case errors.Is(err, ErrEmptyDescription):
		s.metrics.IncClassification(string(j.Normalize()), string(StatusSkipped))
	default:
		s.metrics.IncClassification(string(j.Normalize()), string(StatusFailed))
	}
	return c, err
}

func (s *Service) classify(ctx context.Context, description string, j hscode.Jurisdiction) (Classification, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Classification{}, ErrEmptyDescription
	}
	j = j.Normalize()

	raw, err := s.oracle.Classify(ctx, description, oracle.HintFor(s.Table(), j))
	if err != nil {
		logging.FromContext(ctx).Warn("oracle classify failed",
			"jurisdiction", j,
			"error", err,
		)
		return Classification{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}

	candidate, matched := hscode.Extract(raw)
	if hscode.Digits(candidate) == "" {
		logging.FromContext(ctx).Warn("oracle answer has no code",
			"jurisdiction", j,
			"answer", raw,
		)
		return Classification{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, ErrNoCode)
	}

	confidence := ConfidenceFallback
	if matched {
		confidence = ConfidenceMatched
	}

	return Classification{
		Description:  description,
		Jurisdiction: j,
		Code:         s.formatter.Format(candidate, j),
		Raw:          raw,
		Matched:      matched,
		Confidence:   confidence,
	}, nil
}
