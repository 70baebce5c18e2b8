package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/hsclassify/internal/config"
	"github.com/JonMunkholm/hsclassify/internal/metrics"
)

// Build assembles the configured backend with metrics, retries and caching,
// in that order from the inside out. The returned cleanup releases
// connections and is never nil.
func Build(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (Oracle, func(), error) {
	backend, err := newBackend(ctx, cfg.Oracle)
	if err != nil {
		return nil, func() {}, err
	}

	o := WithMetrics(backend, m)
	o = WithRetry(o, RetryPolicy{
		MaxAttempts: cfg.Oracle.MaxAttempts,
		MaxElapsed:  cfg.Oracle.RetryMaxElapsed,
	})

	if !cfg.Cache.Enabled {
		return o, func() {}, nil
	}

	if cfg.Cache.RedisURL == "" {
		slog.Info("oracle cache enabled", "backend", "memory", "max_entries", cfg.Cache.MaxEntries, "ttl", cfg.Cache.TTL)
		return WithCache(o, NewMemoryCache(cfg.Cache.MaxEntries), cfg.Cache.TTL, m), func() {}, nil
	}

	rc, err := DialRedisCache(ctx, cfg.Cache.RedisURL)
	if err != nil {
		return nil, func() {}, fmt.Errorf("oracle cache: %w", err)
	}
	slog.Info("oracle cache enabled", "backend", "redis", "ttl", cfg.Cache.TTL)

	cleanup := func() {
		if err := rc.Close(); err != nil {
			slog.Warn("close redis cache", "error", err)
		}
	}
	return WithCache(o, rc, cfg.Cache.TTL, m), cleanup, nil
}

func newBackend(ctx context.Context, cfg config.OracleConfig) (Oracle, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case "gemini":
		g, err := NewGemini(ctx, GeminiConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
