package oracle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/hsclassify/internal/logging"
	"github.com/cenkalti/backoff/v5"
	"github.com/openai/openai-go/v2"
	"google.golang.org/genai"
)

// RetryPolicy bounds how often and how long a failed call is retried.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultRetryPolicy is used for zero fields of a RetryPolicy.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxElapsed:      20 * time.Second,
}

type retrying struct {
	next   Oracle
	policy RetryPolicy
}

// WithRetry retries failed calls on next with exponential backoff.
// Cancellation of the caller's context and client errors reported by the
// provider API (4xx other than 408 and 429) stop retrying immediately.
func WithRetry(next Oracle, policy RetryPolicy) Oracle {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if policy.MaxElapsed <= 0 {
		policy.MaxElapsed = DefaultRetryPolicy.MaxElapsed
	}
	return &retrying{next: next, policy: policy}
}

func (r *retrying) Classify(ctx context.Context, description string, hint Hint) (string, error) {
	return r.do(ctx, "classify", func() (string, error) {
		return r.next.Classify(ctx, description, hint)
	})
}

func (r *retrying) Answer(ctx context.Context, question string, rows []Row) (string, error) {
	return r.do(ctx, "answer", func() (string, error) {
		return r.next.Answer(ctx, question, rows)
	})
}

func (r *retrying) do(ctx context.Context, op string, call func() (string, error)) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.MaxInterval = r.policy.MaxInterval
	exp.Reset()

	attempt := 0
	operation := func() (string, error) {
		attempt++
		text, err := call()
		if err != nil && ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		if err != nil && !retryable(err) {
			return "", backoff.Permanent(err)
		}
		return text, err
	}

	notify := func(err error, wait time.Duration) {
		logging.FromContext(ctx).Warn("oracle call failed, retrying",
			"operation", op,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(r.policy.MaxElapsed),
		backoff.WithNotify(notify),
	)
}

// retryable reports whether err may go away on a repeated call.
func retryable(err error) bool {
	var (
		oaiErr    *openai.Error
		geminiErr genai.APIError
		status    int
	)
	switch {
	case errors.As(err, &oaiErr):
		status = oaiErr.StatusCode
	case errors.As(err, &geminiErr):
		status = geminiErr.Code
	default:
		return true
	}
	if status < 400 || status >= 500 {
		return true
	}
	return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
}
