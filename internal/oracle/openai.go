package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIConfig configures the OpenAI chat completion backend.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// OpenAI is an Oracle backed by the OpenAI chat completions API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAI creates an OpenAI backend. SDK retries are disabled; wrap the
// result with WithRetry instead so every backend retries the same way.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}

	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Classify implements Oracle.
func (o *OpenAI) Classify(ctx context.Context, description string, hint Hint) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifySystemPrompt),
			openai.UserMessage(classifyPrompt(description, hint)),
		},
		Temperature: openai.Float(0),
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}
	return o.complete(ctx, params)
}

// Answer implements Oracle.
func (o *OpenAI) Answer(ctx context.Context, question string, rows []Row) (string, error) {
	return o.complete(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(answerSystemPrompt),
			openai.UserMessage(answerPrompt(question, rows)),
		},
		Temperature: openai.Float(0),
	})
}

func (o *OpenAI) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
