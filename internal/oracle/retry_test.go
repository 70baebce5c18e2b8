package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var fastPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxElapsed:      time.Second,
}

func TestWithRetry_EventuallySucceeds(t *testing.T) {
	f := &fakeOracle{classify: func(n int, _ string, _ Hint) (string, error) {
		if n < 3 {
			return "", errors.New("connection reset")
		}
		return "847130", nil
	}}

	got, err := WithRetry(f, fastPolicy).Classify(context.Background(), "laptop", Hint{})
	require.NoError(t, err)
	assert.Equal(t, "847130", got)
	assert.EqualValues(t, 3, f.calls.Load())
}

func TestWithRetry_GivesUp(t *testing.T) {
	boom := errors.New("upstream 503")
	f := &fakeOracle{classify: func(int, string, Hint) (string, error) { return "", boom }}

	_, err := WithRetry(f, fastPolicy).Classify(context.Background(), "laptop", Hint{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 3, f.calls.Load())
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeOracle{classify: func(int, string, Hint) (string, error) {
		cancel()
		return "", errors.New("aborted")
	}}

	_, err := WithRetry(f, fastPolicy).Classify(ctx, "laptop", Hint{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestWithRetry_Answer(t *testing.T) {
	f := &fakeOracle{answer: func(q string, rows []Row) (string, error) {
		return "two rows", nil
	}}

	got, err := WithRetry(f, RetryPolicy{}).Answer(context.Background(), "how many?", []Row{{}, {}})
	require.NoError(t, err)
	assert.Equal(t, "two rows", got)
}

func TestWithRetry_ClientErrorsArePermanent(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"bad request", genai.APIError{Code: http.StatusBadRequest, Message: "invalid argument"}, 1},
		{"bad key", fmt.Errorf("gemini generate content: %w", genai.APIError{Code: http.StatusUnauthorized}), 1},
		{"not found", genai.APIError{Code: http.StatusNotFound}, 1},
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, 3},
		{"request timeout", genai.APIError{Code: http.StatusRequestTimeout}, 3},
		{"server error", genai.APIError{Code: http.StatusServiceUnavailable}, 3},
		{"transport error", errors.New("connection reset"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeOracle{classify: func(int, string, Hint) (string, error) { return "", tt.err }}

			_, err := WithRetry(f, fastPolicy).Classify(context.Background(), "laptop", Hint{})
			require.Error(t, err)
			assert.EqualValues(t, tt.wantCalls, f.calls.Load())
		})
	}
}

func TestWithRetry_OpenAIClientErrorIsPermanent(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`, nil)
	api := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	f := &fakeOracle{classify: func(_ int, d string, h Hint) (string, error) {
		return api.Classify(context.Background(), d, h)
	}}

	_, err := WithRetry(f, fastPolicy).Classify(context.Background(), "laptop", Hint{})
	require.Error(t, err)
	assert.EqualValues(t, 1, f.calls.Load())
}
