package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Лимиты считаются по ключу независимо
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	rl.Reset("10.0.0.1")
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterSweepsStaleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")

	time.Sleep(25 * time.Millisecond)

	// Очередной запрос запускает уборку: корзина второго IP исчезает
	rl.Allow("10.0.0.1")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	_, exists := rl.requests["10.0.0.2"]
	assert.False(t, exists)
	assert.Len(t, rl.requests["10.0.0.1"], 1)
}

func TestRateLimiterResetTimeIgnoresExpired(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	rl.Allow("10.0.0.1")
	time.Sleep(20 * time.Millisecond)

	// Все запросы ключа устарели - лимит уже открыт
	reset := rl.GetResetTime("10.0.0.1")
	assert.False(t, reset.After(time.Now()))
}

func TestRateLimiterGetRemaining(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	assert.Equal(t, 3, rl.GetRemaining("10.0.0.1"))
	rl.Allow("10.0.0.1")
	assert.Equal(t, 2, rl.GetRemaining("10.0.0.1"))
}
