package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type countingMetrics struct {
	mu                   sync.Mutex
	hits, misses, errors int
}

func (m *countingMetrics) RecordCacheHit(string)   { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *countingMetrics) RecordCacheMiss(string)  { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *countingMetrics) RecordCacheError(string) { m.mu.Lock(); m.errors++; m.mu.Unlock() }

func newTestRedisCache(t *testing.T, cfg RedisConfig) (*RedisCache, *miniredis.Miniredis, *countingMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	metrics := &countingMetrics{}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: 0})
	c := NewRedisCacheFromClient(client, cfg, zap.NewNop(), metrics)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr, metrics
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr, metrics := newTestRedisCache(t, RedisConfig{KeyPrefix: "pmp:"})

	var got payload
	assert.False(t, c.Get(ctx, "question:1", &got))

	c.Set(ctx, "question:1", payload{ID: "1", Count: 3}, time.Hour)
	require.True(t, mr.Exists("pmp:question:1"))
	assert.Equal(t, time.Hour, mr.TTL("pmp:question:1"))

	require.True(t, c.Get(ctx, "question:1", &got))
	assert.Equal(t, payload{ID: "1", Count: 3}, got)

	c.Delete(ctx, "question:1")
	assert.False(t, mr.Exists("pmp:question:1"))

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, StatusConnected, c.Status())
}

func TestRedisCache_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	c, mr, _ := newTestRedisCache(t, RedisConfig{})

	c.Set(ctx, "questions:all:all:1:20", payload{ID: "x"}, TTLMedium)
	mr.FastForward(TTLMedium + time.Second)

	var got payload
	assert.False(t, c.Get(ctx, "questions:all:all:1:20", &got))
}

func TestRedisCache_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	c, mr, _ := newTestRedisCache(t, RedisConfig{})
	require.NoError(t, mr.Set("question:bad", "{not json"))

	var got payload
	assert.False(t, c.Get(ctx, "question:bad", &got))
	assert.False(t, mr.Exists("question:bad"), "corrupt entry should be evicted")
	assert.True(t, c.Connected())
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, mr, _ := newTestRedisCache(t, RedisConfig{KeyPrefix: "pmp:"})

	for _, k := range []string{"questions:all:all:1:20", "questions:people:HARD:2:10", "question:abc", "domains:all"} {
		c.Set(ctx, k, payload{ID: k}, time.Hour)
	}

	c.DeletePrefix(ctx, PrefixQuestionList)

	assert.False(t, mr.Exists("pmp:questions:all:all:1:20"))
	assert.False(t, mr.Exists("pmp:questions:people:HARD:2:10"))
	assert.True(t, mr.Exists("pmp:question:abc"))
	assert.True(t, mr.Exists("pmp:domains:all"))
}

func TestRedisCache_FailOpen(t *testing.T) {
	ctx := context.Background()
	c, mr, metrics := newTestRedisCache(t, RedisConfig{
		OperationTimeout: 100 * time.Millisecond,
		BreakerTimeout:   50 * time.Millisecond,
	})
	c.Set(ctx, "question:1", payload{ID: "1"}, time.Hour)

	mr.Close()

	var got payload
	assert.NotPanics(t, func() {
		assert.False(t, c.Get(ctx, "question:1", &got))
		c.Set(ctx, "question:2", payload{ID: "2"}, time.Hour)
		c.Delete(ctx, "question:1")
		c.DeletePrefix(ctx, "questions:")
	})
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Greater(t, metrics.errors, 0)

	// Calls while disconnected are skipped rather than retried
	start := time.Now()
	assert.False(t, c.Get(ctx, "question:1", &got))
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	require.NoError(t, mr.Restart())
	assert.Eventually(t, func() bool {
		c.Set(ctx, "question:3", payload{ID: "3"}, time.Hour)
		return c.Connected() && c.Get(ctx, "question:3", &got)
	}, 2*time.Second, 25*time.Millisecond)
}

func TestNewRedisCache_UnreachableStartsDisconnected(t *testing.T) {
	c, err := NewRedisCache(context.Background(), RedisConfig{
		URL:              "redis://127.0.0.1:1/0",
		OperationTimeout: 100 * time.Millisecond,
	}, zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, StatusDisconnected, c.Status())

	var got payload
	assert.False(t, c.Get(context.Background(), "question:1", &got))
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "://nope"}, zap.NewNop(), nil)
	assert.Error(t, err)
}
