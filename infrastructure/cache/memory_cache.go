package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryCache is an in-process cache with the same JSON round trip as
// RedisCache. It backs local development and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]cacheItem
	logger  *zap.Logger
	metrics Metrics
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache and starts its cleanup loop
func NewMemoryCache(logger *zap.Logger, metrics Metrics) *MemoryCache {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	c := &MemoryCache{
		items:   make(map[string]cacheItem),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go c.cleanupExpired(time.Minute)

	return c
}

// Get implements ports.Cache
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) bool {
	resource := resourceOf(key)

	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || c.now().After(item.expiresAt) {
		c.metrics.RecordCacheMiss(resource)
		return false
	}

	if err := json.Unmarshal(item.value, dest); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.metrics.RecordCacheMiss(resource)
		c.Delete(ctx, key)
		return false
	}

	c.metrics.RecordCacheHit(resource)
	return true
}

// Set implements ports.Cache
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:     data,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete implements ports.Cache
func (c *MemoryCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.items, k)
	}
}

// DeletePrefix implements ports.Cache
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
}

// Len returns the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Status always reports connected
func (c *MemoryCache) Status() string {
	return StatusConnected
}

// Close stops the cleanup loop
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := c.now()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
