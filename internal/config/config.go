// Package config provides centralized configuration management for the service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Oracle   OracleConfig
	Batch    BatchConfig
	Cache    CacheConfig
	Codes    CodesConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8000"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, bounded by RequestTimeout)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 10m, batches are slow)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"10m"`
}

// OracleConfig selects and tunes the classification model backend.
type OracleConfig struct {
	// Provider is the model backend: openai or gemini (default: openai)
	Provider string `env:"ORACLE_PROVIDER" default:"openai"`

	// APIKey authenticates against the provider (required)
	// Supports both ORACLE_API_KEY and OPENAI_API_KEY env vars for compatibility
	APIKey string `env:"ORACLE_API_KEY" envAlt:"OPENAI_API_KEY" required:"true"`

	// Model is the provider model name (default: gpt-4 for openai, gemini-2.5-flash for gemini)
	Model string `env:"ORACLE_MODEL"`

	// BaseURL overrides the provider endpoint, e.g. for a proxy
	BaseURL string `env:"ORACLE_BASE_URL"`

	// Timeout bounds a single model call (default: 30s)
	Timeout time.Duration `env:"ORACLE_TIMEOUT" default:"30s"`

	// MaxTokens caps the classification answer length (default: 10)
	MaxTokens int `env:"ORACLE_MAX_TOKENS" default:"10"`

	// MaxAttempts is the number of tries per call including the first (default: 3)
	MaxAttempts int `env:"ORACLE_MAX_ATTEMPTS" default:"3"`

	// RetryMaxElapsed bounds total time spent retrying one call (default: 20s)
	RetryMaxElapsed time.Duration `env:"ORACLE_RETRY_MAX_ELAPSED" default:"20s"`
}

// BatchConfig holds bulk classification settings.
type BatchConfig struct {
	// MaxFileSize is the maximum allowed workbook size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxRows is the maximum number of rows classified per batch (default: 1000)
	MaxRows int `env:"BATCH_MAX_ROWS" default:"1000"`

	// MaxConcurrent is the maximum number of batches running at once (default: 5)
	MaxConcurrent int `env:"BATCH_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a batch slot (default: 30s)
	MaxWaitTime time.Duration `env:"BATCH_MAX_WAIT_TIME" default:"30s"`

	// Workers is the number of rows classified in parallel within one batch (default: 8)
	Workers int `env:"BATCH_WORKERS" default:"8"`

	// Timeout is the maximum duration for a single batch (default: 10m)
	Timeout time.Duration `env:"BATCH_TIMEOUT" default:"10m"`
}

// CacheConfig holds oracle answer cache settings.
type CacheConfig struct {
	// Enabled controls whether classifications are memoized (default: true)
	Enabled bool `env:"CACHE_ENABLED" default:"true"`

	// RedisURL switches the cache to Redis, e.g. redis://localhost:6379/0
	RedisURL string `env:"CACHE_REDIS_URL" envAlt:"REDIS_URL"`

	// TTL is how long an answer stays cached (default: 24h)
	TTL time.Duration `env:"CACHE_TTL" default:"24h"`

	// MaxEntries bounds the in-memory cache (default: 10000)
	MaxEntries int `env:"CACHE_MAX_ENTRIES" default:"10000"`
}

// CodesConfig holds code formatting settings.
type CodesConfig struct {
	// JurisdictionLengths overrides expected code lengths, e.g. "US=10,JP=9"
	JurisdictionLengths []string `env:"HSC_JURISDICTION_LENGTHS"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// AllowedOrigins is the CORS origin allow-list (default: the dev frontend)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5174"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Lengths parses JurisdictionLengths into a map of jurisdiction to digit count.
func (c *CodesConfig) Lengths() (map[string]int, error) {
	out := make(map[string]int, len(c.JurisdictionLengths))
	for _, pair := range c.JurisdictionLengths {
		id, n, ok := strings.Cut(pair, "=")
		id = strings.ToUpper(strings.TrimSpace(id))
		if !ok || id == "" {
			return nil, fmt.Errorf("expected ID=LENGTH, got %q", pair)
		}
		length, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || length <= 0 {
			return nil, fmt.Errorf("length for %s must be a positive integer, got %q", id, n)
		}
		out[id] = length
	}
	return out, nil
}
