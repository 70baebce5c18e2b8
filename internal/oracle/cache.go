package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/hsclassify/internal/hscode"
	"github.com/JonMunkholm/hsclassify/internal/logging"
	"github.com/JonMunkholm/hsclassify/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Cache stores raw oracle answers keyed by request.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CacheKey derives the cache key for a classification request. Descriptions
// are compared case-insensitively with surrounding whitespace removed.
func CacheKey(description string, hint Hint) string {
	norm := strings.ToLower(strings.TrimSpace(description))
	h := sha256.Sum256([]byte(string(hint.Jurisdiction.Normalize()) + "\x00" + norm))
	return hex.EncodeToString(h[:])
}

type cached struct {
	next    Oracle
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// WithCache memoizes Classify answers in c. Answers without any digits are
// not stored, so the next request asks again. Answer calls pass through.
// Cache errors are logged and never fail a classification.
func WithCache(next Oracle, c Cache, ttl time.Duration, m *metrics.Metrics) Oracle {
	return &cached{next: next, cache: c, ttl: ttl, metrics: m}
}

func (c *cached) Classify(ctx context.Context, description string, hint Hint) (string, error) {
	key := CacheKey(description, hint)
	log := logging.FromContext(ctx)

	text, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.IncCacheLookup("error")
		log.Warn("oracle cache read failed", "error", err)
	case ok:
		c.metrics.IncCacheLookup("hit")
		return text, nil
	default:
		c.metrics.IncCacheLookup("miss")
	}

	text, err = c.next.Classify(ctx, description, hint)
	if err != nil {
		return "", err
	}
	if hscode.Digits(text) == "" {
		return text, nil
	}

	if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
		log.Warn("oracle cache write failed", "error", err)
	}
	return text, nil
}

func (c *cached) Answer(ctx context.Context, question string, rows []Row) (string, error) {
	return c.next.Answer(ctx, question, rows)
}

// MemoryCache is an in-process Cache with per-entry expiry and a size bound.
// When full, expired entries are dropped first, then arbitrary ones.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	max     int
	now     func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryCache creates a MemoryCache holding at most maxEntries answers.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		max:     maxEntries,
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.max {
		m.evictLocked()
	}
	m.entries[key] = memoryEntry{value: value, expires: m.now().Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryCache) evictLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	for k := range m.entries {
		if len(m.entries) < m.max {
			return
		}
		delete(m.entries, k)
	}
}

// redisKeyPrefix namespaces cached answers in a shared Redis.
const redisKeyPrefix = "hsc:classify:"

// RedisCache is a Cache shared between service instances.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedisCache parses url, connects and pings.
func DialRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err()
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
