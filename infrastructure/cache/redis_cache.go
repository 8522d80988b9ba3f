package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"

	scanBatchSize = 200
)

// Metrics receives cache outcomes
type Metrics interface {
	RecordCacheHit(resource string)
	RecordCacheMiss(resource string)
	RecordCacheError(operation string)
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit(string)   {}
func (noopMetrics) RecordCacheMiss(string)  {}
func (noopMetrics) RecordCacheError(string) {}

// RedisConfig configures the Redis cache
type RedisConfig struct {
	URL              string
	KeyPrefix        string
	OperationTimeout time.Duration
	BreakerTimeout   time.Duration
	FailureThreshold uint32
}

func (c *RedisConfig) applyDefaults() {
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 250 * time.Millisecond
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 10 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 1
	}
}

// RedisCache is a fail-open cache over Redis. A circuit breaker stands in for
// the connection flag: once it opens every call is skipped, and after the
// breaker timeout a single probe decides whether Redis is back. go-redis
// redials on its own, so the probe succeeds as soon as the server returns.
type RedisCache struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker
	prefix    string
	opTimeout time.Duration
	logger    *zap.Logger
	metrics   Metrics
}

// NewRedisCache connects to cfg.URL. An unreachable server is not an error:
// the cache starts disconnected and serves misses until Redis comes back.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger *zap.Logger, metrics Metrics) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.OnConnect = func(ctx context.Context, cn *redis.Conn) error {
		logger.Debug("Redis connection established", zap.String("addr", opts.Addr))
		return nil
	}
	opts.MaxRetries = 0

	c := NewRedisCacheFromClient(redis.NewClient(opts), cfg, logger, metrics)
	if _, err := c.execute(ctx, "ping", c.opTimeout, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Ping(ctx).Err()
	}); err != nil {
		logger.Warn("Redis unavailable at startup, serving reads from the database",
			zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		logger.Info("Redis cache connected", zap.String("addr", opts.Addr))
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, cfg RedisConfig, logger *zap.Logger, metrics Metrics) *RedisCache {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = noopMetrics{}
	}

	c := &RedisCache{
		client:    client,
		prefix:    cfg.KeyPrefix,
		opTimeout: cfg.OperationTimeout,
		logger:    logger,
		metrics:   metrics,
	}

	threshold := cfg.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A miss or a caller giving up says nothing about Redis health.
			return err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Cache connection state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// Get implements ports.Cache
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	resource := resourceOf(key)

	res, err := c.execute(ctx, "get", c.opTimeout, func(ctx context.Context) (interface{}, error) {
		return c.client.Get(ctx, c.prefix+key).Bytes()
	})
	if err != nil {
		c.metrics.RecordCacheMiss(resource)
		return false
	}

	if err := json.Unmarshal(res.([]byte), dest); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.metrics.RecordCacheError("decode")
		c.metrics.RecordCacheMiss(resource)
		c.Delete(ctx, key)
		return false
	}

	c.metrics.RecordCacheHit(resource)
	return true
}

// Set implements ports.Cache
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		c.metrics.RecordCacheError("encode")
		return
	}

	_, _ = c.execute(ctx, "set", c.opTimeout, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	})
}

// Delete implements ports.Cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}

	_, _ = c.execute(ctx, "delete", c.opTimeout, func(ctx context.Context) (interface{}, error) {
		return nil, c.client.Del(ctx, full...).Err()
	})
}

// DeletePrefix implements ports.Cache using SCAN so Redis is never blocked by KEYS
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) {
	pattern := escapeGlob(c.prefix+prefix) + "*"

	res, _ := c.execute(ctx, "delete_prefix", 10*c.opTimeout, func(ctx context.Context) (interface{}, error) {
		removed := 0
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
			if err != nil {
				return removed, err
			}
			if len(keys) > 0 {
				if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
					return removed, err
				}
				removed += len(keys)
			}
			cursor = next
			if cursor == 0 {
				return removed, nil
			}
		}
	})

	if n, ok := res.(int); ok && n > 0 {
		c.logger.Debug("Invalidated cache prefix", zap.String("prefix", prefix), zap.Int("keys", n))
	}
}

// Connected reports whether operations are currently reaching Redis
func (c *RedisCache) Connected() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// Status returns "connected" or "disconnected"
func (c *RedisCache) Status() string {
	if c.Connected() {
		return StatusConnected
	}
	return StatusDisconnected
}

// Ping checks Redis directly, bypassing the breaker
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) execute(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err == nil || errors.Is(err, redis.Nil) {
		return res, err
	}

	c.metrics.RecordCacheError(op)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Debug("Cache disconnected, skipping operation", zap.String("operation", op))
	} else {
		c.logger.Warn("Cache operation failed", zap.String("operation", op), zap.Error(err))
	}
	return res, err
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
