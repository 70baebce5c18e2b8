package oracle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures the Google Gemini backend.
type GeminiConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// Gemini is an Oracle backed by the Gemini generateContent API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens}, nil
}

// Classify implements Oracle.
func (g *Gemini) Classify(ctx context.Context, description string, hint Hint) (string, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(classifySystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
	}
	if g.maxTokens > 0 {
		gc.MaxOutputTokens = int32(g.maxTokens)
	}
	return g.generate(ctx, classifyPrompt(description, hint), gc)
}

// Answer implements Oracle.
func (g *Gemini) Answer(ctx context.Context, question string, rows []Row) (string, error) {
	return g.generate(ctx, answerPrompt(question, rows), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(answerSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
	})
}

func (g *Gemini) generate(ctx context.Context, prompt string, gc *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
