package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func newOpenAIServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Classify(t *testing.T) {
	var req map[string]any
	srv := newOpenAIServer(t, http.StatusOK, chatCompletion(" 8471300100\n"), &req)

	o := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", MaxTokens: 10})
	got, err := o.Classify(context.Background(), "laptop computer", Hint{Jurisdiction: "US", Label: "United States (HTS)", Digits: 10})
	require.NoError(t, err)
	assert.Equal(t, "8471300100", got)

	assert.Equal(t, "gpt-4", req["model"])
	assert.EqualValues(t, 0, req["temperature"])
	assert.EqualValues(t, 10, req["max_tokens"])

	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Contains(t, user["content"], "laptop computer")
}

func TestOpenAI_Answer(t *testing.T) {
	var req map[string]any
	srv := newOpenAIServer(t, http.StatusOK, chatCompletion("The laptop."), &req)

	o := NewOpenAI(OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL + "/", MaxTokens: 10})
	got, err := o.Answer(context.Background(), "Which is a computer?", []Row{{Description: "laptop", Code: "8471.30"}})
	require.NoError(t, err)
	assert.Equal(t, "The laptop.", got)
	assert.Equal(t, "gpt-4o", req["model"])
	_, capped := req["max_tokens"]
	assert.False(t, capped, "answers are not token-capped")
}

func TestOpenAI_Errors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := newOpenAIServer(t, http.StatusInternalServerError, `{"error":{"message":"overloaded","type":"server_error"}}`, nil)
		o := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})

		_, err := o.Classify(context.Background(), "laptop", Hint{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "openai chat completion")
	})

	t.Run("empty content", func(t *testing.T) {
		srv := newOpenAIServer(t, http.StatusOK, chatCompletion("   "), nil)
		o := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})

		_, err := o.Classify(context.Background(), "laptop", Hint{})
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})
}
