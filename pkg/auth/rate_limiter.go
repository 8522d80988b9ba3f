package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// TokenBucketLimiter implements token bucket rate limiting per key. Tokens
// refill continuously at rate per second up to burst.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	idleTTL time.Duration
	now     func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucketLimiter creates a limiter and starts evicting idle buckets
func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go l.cleanup(time.Minute)
	return l
}

// WithClock replaces the time source
func (l *TokenBucketLimiter) WithClock(now func() time.Time) *TokenBucketLimiter {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
	return l
}

// Allow takes one token from the bucket of key
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastRefill: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.lastRefill = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Limit returns the refill rate and the burst
func (l *TokenBucketLimiter) Limit() (float64, int) {
	return l.rate, int(l.burst)
}

// Close stops the cleanup goroutine
func (l *TokenBucketLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *TokenBucketLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, b := range l.buckets {
				if now.Sub(b.lastRefill) > l.idleTTL {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}
