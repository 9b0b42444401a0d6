package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Burst(t *testing.T) {
	tests := []struct {
		name     string
		burst    int
		calls    int
		wantPass int
	}{
		{"within burst", 3, 3, 3},
		{"past burst", 2, 5, 2},
		{"single token", 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(0.001, tt.burst)
			passed := 0
			for range tt.calls {
				if rl.Allow("root-prefetch") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := Every(time.Hour)

	assert.True(t, rl.Allow("root-prefetch"))
	assert.False(t, rl.Allow("root-prefetch"))
	assert.True(t, rl.Allow("entry-prefetch"))
}

func TestEvery_OnePerInterval(t *testing.T) {
	rl := Every(time.Hour)

	assert.True(t, rl.Allow("root-prefetch"))
	for range 5 {
		assert.False(t, rl.Allow("root-prefetch"), "burst of root navigations should be throttled")
	}

	rl.Reset("root-prefetch")
	assert.True(t, rl.Allow("root-prefetch"), "Reset should refill the bucket")
}

func TestEvery_RefillsAfterInterval(t *testing.T) {
	rl := Every(20 * time.Millisecond)

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
	assert.Eventually(t, func() bool { return rl.Allow("k") }, time.Second, 5*time.Millisecond)
}

func TestEvery_NonPositiveIntervalDisablesThrottle(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		rl := Every(interval)
		for i := range 10 {
			assert.True(t, rl.Allow("k"), "event %d throttled with throttling disabled", i)
		}
	}
}
