package ratelimiter

import (
	"sync"
	"time"
)

// TokenBucket is a continuously refilling token bucket.
type TokenBucket struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	perToken time.Duration
	last     time.Time
	now      func() time.Time
}

// Ensure TokenBucket implements Limiter.
var _ Limiter = (*TokenBucket)(nil)

// New returns a limiter admitting requestsPerMinute requests, starting full.
// A non-positive rate yields a nil Limiter, which callers treat as "no limit".
func New(requestsPerMinute int) Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return NewTokenBucket(requestsPerMinute, time.Minute)
}

// NewTokenBucket creates a full bucket that refills capacity tokens per interval.
func NewTokenBucket(capacity int, interval time.Duration) *TokenBucket {
	tb := &TokenBucket{
		capacity: float64(capacity),
		tokens:   float64(capacity),
		perToken: interval / time.Duration(max(capacity, 1)),
		now:      time.Now,
	}
	tb.last = tb.now()
	return tb
}

// refill must be called with mu held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.last)
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(tb.capacity, tb.tokens+float64(elapsed)/float64(tb.perToken))
	tb.last = now
}

// TryConsume atomically checks and consumes n tokens.
func (tb *TokenBucket) TryConsume(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if float64(n) > tb.tokens {
		return false
	}
	tb.tokens -= float64(n)
	return true
}

// TimeUntilAvailable returns how long until n tokens would be available.
// Requests larger than the capacity never become available; the full refill
// time is returned for them.
func (tb *TokenBucket) TimeUntilAvailable(n int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	want := min(float64(n), tb.capacity)
	if want <= tb.tokens {
		return 0
	}
	return time.Duration((want - tb.tokens) * float64(tb.perToken))
}

// Remaining returns the number of whole tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(tb.tokens)
}
