package cache

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxEntries int) *ResultCache {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := NewResultCache(maxEntries, time.Hour, nil, logger)
	require.NoError(t, err)
	return c
}

func TestResultCacheHitAndMiss(t *testing.T) {
	c := newTestCache(t, 8)
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "key", []byte(`{"risk":4.33}`))
	payload, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, `{"risk":4.33}`, string(payload))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.MemoryHits)
	assert.Equal(t, int64(1), stats.MemoryMisses)
}

func TestResultCacheEviction(t *testing.T) {
	c := newTestCache(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), []byte("payload"))
	}
	assert.Equal(t, 2, c.Len())

	// Oldest entries are gone, newest survive.
	_, ok := c.Get(ctx, "key-0")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "key-4")
	assert.True(t, ok)
}

func TestResultCacheOverwrite(t *testing.T) {
	c := newTestCache(t, 8)
	ctx := context.Background()

	c.Set(ctx, "key", []byte("first"))
	c.Set(ctx, "key", []byte("second"))

	payload, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, "second", string(payload))
	assert.Equal(t, 1, c.Len())
}

func TestResultCacheWithoutRedisSkipsSecondTier(t *testing.T) {
	c := newTestCache(t, 8)
	ctx := context.Background()

	_, ok := c.Get(ctx, "nope")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.RedisHits)
	assert.Equal(t, int64(0), stats.RedisMisses)
}
