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
	"google.golang.org/genai"
)

func geminiResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": "STOP",
		}},
	})
	return string(body)
}

func newGeminiServer(t *testing.T, model string, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/"+model+":generateContent", r.URL.Path)
		assert.Equal(t, "gm-test", r.Header.Get("x-goog-api-key"))
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

func newTestGemini(t *testing.T, cfg GeminiConfig) *Gemini {
	t.Helper()
	cfg.APIKey = "gm-test"
	g, err := NewGemini(context.Background(), cfg)
	require.NoError(t, err)
	return g
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func TestGemini_Classify(t *testing.T) {
	var req map[string]any
	srv := newGeminiServer(t, "gemini-2.5-flash", http.StatusOK, geminiResponse(" 8471300100\n"), &req)

	g := newTestGemini(t, GeminiConfig{BaseURL: srv.URL, MaxTokens: 10})
	got, err := g.Classify(context.Background(), "laptop computer", Hint{Jurisdiction: "US", Label: "United States (HTS)", Digits: 10})
	require.NoError(t, err)
	assert.Equal(t, "8471300100", got)

	gen, ok := req["generationConfig"].(map[string]any)
	require.True(t, ok, "request carries generationConfig: %v", req)
	assert.EqualValues(t, 0, gen["temperature"])
	assert.EqualValues(t, 10, gen["maxOutputTokens"])

	raw, err := json.Marshal(req["contents"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "laptop computer")
	assert.Contains(t, req, "systemInstruction")
}

func TestGemini_Answer(t *testing.T) {
	var req map[string]any
	srv := newGeminiServer(t, "gemini-2.5-pro", http.StatusOK, geminiResponse("The laptop."), &req)

	g := newTestGemini(t, GeminiConfig{Model: "gemini-2.5-pro", BaseURL: srv.URL, MaxTokens: 10})
	got, err := g.Answer(context.Background(), "Which is a computer?", []Row{{Description: "laptop", Code: "8471.30"}})
	require.NoError(t, err)
	assert.Equal(t, "The laptop.", got)

	gen, _ := req["generationConfig"].(map[string]any)
	_, capped := gen["maxOutputTokens"]
	assert.False(t, capped, "answers are not token-capped")
}

func TestGemini_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := newGeminiServer(t, "gemini-2.5-flash", http.StatusBadRequest,
			`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, nil)
		g := newTestGemini(t, GeminiConfig{BaseURL: srv.URL})

		_, err := g.Classify(context.Background(), "laptop", Hint{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gemini generate content")

		var apiErr genai.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Code)
		assert.False(t, retryable(err))
	})

	t.Run("empty candidate", func(t *testing.T) {
		srv := newGeminiServer(t, "gemini-2.5-flash", http.StatusOK, geminiResponse("   "), nil)
		g := newTestGemini(t, GeminiConfig{BaseURL: srv.URL})

		_, err := g.Classify(context.Background(), "laptop", Hint{})
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := newGeminiServer(t, "gemini-2.5-flash", http.StatusOK, `{"candidates":[]}`, nil)
		g := newTestGemini(t, GeminiConfig{BaseURL: srv.URL})

		_, err := g.Answer(context.Background(), "q", nil)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})
}
