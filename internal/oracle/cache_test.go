package oracle

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/hsclassify/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	us := Hint{Jurisdiction: "US"}
	assert.Equal(t, CacheKey("Laptop ", us), CacheKey("laptop", Hint{Jurisdiction: "us"}))
	assert.NotEqual(t, CacheKey("laptop", us), CacheKey("laptop", Hint{Jurisdiction: "JP"}))
	assert.Len(t, CacheKey("laptop", us), 64)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(10)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "847130", time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "847130", v)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Bounded(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Set(ctx, k, k, time.Hour))
	}
	assert.Equal(t, 2, c.Len())

	v, ok, _ := c.Get(ctx, "d")
	assert.True(t, ok, "latest write must survive eviction")
	assert.Equal(t, "d", v)
}

func TestWithCache_HitAndMiss(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := &fakeOracle{classify: func(int, string, Hint) (string, error) { return "847130", nil }}
	o := WithCache(f, NewMemoryCache(10), time.Hour, m)

	for i := 0; i < 3; i++ {
		got, err := o.Classify(context.Background(), "Laptop", Hint{Jurisdiction: "US"})
		require.NoError(t, err)
		assert.Equal(t, "847130", got)
	}

	assert.EqualValues(t, 1, f.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestWithCache_ErrorsNotCached(t *testing.T) {
	f := &fakeOracle{classify: func(n int, _ string, _ Hint) (string, error) {
		if n == 1 {
			return "", errors.New("timeout")
		}
		return "847130", nil
	}}
	o := WithCache(f, NewMemoryCache(10), time.Hour, nil)

	_, err := o.Classify(context.Background(), "laptop", Hint{})
	require.Error(t, err)

	got, err := o.Classify(context.Background(), "laptop", Hint{})
	require.NoError(t, err)
	assert.Equal(t, "847130", got)
}

func TestWithCache_AnswersWithoutCodeNotCached(t *testing.T) {
	f := &fakeOracle{classify: func(n int, _ string, _ Hint) (string, error) {
		if n == 1 {
			return "I am not sure", nil
		}
		return "847130", nil
	}}
	mc := NewMemoryCache(10)
	o := WithCache(f, mc, time.Hour, nil)

	got, err := o.Classify(context.Background(), "widget", Hint{Jurisdiction: "US"})
	require.NoError(t, err)
	assert.Equal(t, "I am not sure", got)
	assert.Zero(t, mc.Len())

	got, err = o.Classify(context.Background(), "widget", Hint{Jurisdiction: "US"})
	require.NoError(t, err)
	assert.Equal(t, "847130", got)
	assert.EqualValues(t, 2, f.calls.Load())
	assert.Equal(t, 1, mc.Len())
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func TestWithCache_CacheFailureIgnored(t *testing.T) {
	f := &fakeOracle{classify: func(int, string, Hint) (string, error) { return "847130", nil }}
	o := WithCache(f, brokenCache{}, time.Hour, nil)

	got, err := o.Classify(context.Background(), "laptop", Hint{})
	require.NoError(t, err)
	assert.Equal(t, "847130", got)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("HSC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("HSC_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	rc, err := DialRedisCache(ctx, url)
	require.NoError(t, err)
	defer rc.Close()

	key := CacheKey("redis test "+time.Now().String(), Hint{})
	_, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Set(ctx, key, "847130", time.Minute))
	v, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "847130", v)
}
