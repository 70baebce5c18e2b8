//go:build integration

package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// startRedis runs a throwaway Redis container and returns its URL.
func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

func TestRedisCache_Container(t *testing.T) {
	ctx := context.Background()
	rc, err := DialRedisCache(ctx, startRedis(t))
	require.NoError(t, err)
	defer rc.Close()

	calls := 0
	f := &fakeOracle{classify: func(int, string, Hint) (string, error) {
		calls++
		return "6109100012", nil
	}}
	o := WithCache(f, rc, time.Minute, nil)

	hint := Hint{Jurisdiction: "US", Digits: 10}
	for range 3 {
		got, err := o.Classify(ctx, "Cotton T-Shirt", hint)
		require.NoError(t, err)
		assert.Equal(t, "6109100012", got)
	}
	assert.Equal(t, 1, calls, "answers are served from redis after the first call")

	_, err = o.Classify(ctx, "cotton t-shirt", Hint{Jurisdiction: "EU", Digits: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "jurisdiction is part of the key")
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	rc, err := DialRedisCache(ctx, startRedis(t))
	require.NoError(t, err)
	defer rc.Close()

	key := CacheKey("short lived", Hint{})
	require.NoError(t, rc.Set(ctx, key, "847130", 100*time.Millisecond))

	require.Eventually(t, func() bool {
		_, ok, err := rc.Get(ctx, key)
		return err == nil && !ok
	}, 5*time.Second, 50*time.Millisecond)
}
