// Package cache provides a result cache for completed risk computations.
// The computations are pure, so a cache entry keyed by a canonical input
// hash can be served indefinitely; TTLs only bound the Redis tier.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Stats tracks cache effectiveness across both tiers.
type Stats struct {
	MemoryHits   int64 `json:"memory_hits"`
	MemoryMisses int64 `json:"memory_misses"`
	RedisHits    int64 `json:"redis_hits"`
	RedisMisses  int64 `json:"redis_misses"`
}

// ResultCache is a two-tier cache for serialized results: an in-memory LRU
// for hot entries and an optional Redis tier shared across replicas.
// The Redis tier is skipped entirely when no client is configured.
type ResultCache struct {
	memory *lru.Cache[string, []byte]
	redis  *redis.Client
	ttl    time.Duration
	log    *logrus.Logger

	mu    sync.Mutex
	stats Stats
}

// NewResultCache creates a result cache. redisClient may be nil for
// standalone deployments; maxEntries bounds the in-memory tier.
func NewResultCache(maxEntries int, ttl time.Duration, redisClient *redis.Client, logger *logrus.Logger) (*ResultCache, error) {
	memory, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, err
	}
	return &ResultCache{
		memory: memory,
		redis:  redisClient,
		ttl:    ttl,
		log:    logger,
	}, nil
}

// Get returns the cached payload for key, consulting the memory tier first
// and falling back to Redis. A Redis hit is promoted into memory.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if payload, ok := c.memory.Get(key); ok {
		c.count(func(s *Stats) { s.MemoryHits++ })
		return payload, true
	}
	c.count(func(s *Stats) { s.MemoryMisses++ })

	if c.redis == nil {
		return nil, false
	}

	payload, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("Redis cache lookup failed")
		}
		c.count(func(s *Stats) { s.RedisMisses++ })
		return nil, false
	}
	c.count(func(s *Stats) { s.RedisHits++ })
	c.memory.Add(key, payload)
	return payload, true
}

// Set stores a payload in both tiers. Redis failures are logged and
// ignored; the cache is an optimization, never a source of truth.
func (c *ResultCache) Set(ctx context.Context, key string, payload []byte) {
	c.memory.Add(key, payload)
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("Redis cache write failed")
	}
}

// Stats returns a snapshot of cache counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of entries in the memory tier.
func (c *ResultCache) Len() int {
	return c.memory.Len()
}

func (c *ResultCache) count(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
