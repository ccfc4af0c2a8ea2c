package ws

import (
	"sync"
	"time"
)

// rateLimiter is a small token bucket throttling inbound frames per
// connection.
type rateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	capacity  float64
	rate      float64
	lastCheck time.Time
}

func newRateLimiter(capacity int, interval time.Duration) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &rateLimiter{
		tokens:    float64(capacity),
		capacity:  float64(capacity),
		rate:      float64(capacity) / interval.Seconds(),
		lastCheck: time.Now(),
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastCheck).Seconds()
	rl.lastCheck = now

	if elapsed > 0 {
		rl.tokens += elapsed * rl.rate
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
	}
	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}

// NewLimiter exposes the token bucket to the driving adapter's read loop.
func NewLimiter(capacity int, interval time.Duration) func() bool {
	rl := newRateLimiter(capacity, interval)
	return rl.allow
}
