// Package ratelimit throttles repeated background work per key with token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per key.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a limiter allowing rps events per second with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Every creates a limiter allowing one event per interval per key.
// A non-positive interval disables throttling.
func Every(interval time.Duration) *KeyedRateLimiter {
	if interval <= 0 {
		return New(float64(rate.Inf), 1)
	}
	rl := New(0, 1)
	rl.limit = rate.Every(interval)
	return rl
}

// Allow reports whether an event for key may happen now, consuming a token if so.
func (rl *KeyedRateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Reset forgets the bucket of key so the next event passes.
func (rl *KeyedRateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, key)
}

func (rl *KeyedRateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = l
	}
	return l
}
