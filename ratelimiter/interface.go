package ratelimiter

import "time"

// Limiter defines the interface for outbound request limiters.
// Implementations can be local (in-memory) or distributed (Redis, etc.).
type Limiter interface {
	// TryConsume atomically checks capacity and consumes n tokens if available.
	// Returns true if tokens were consumed, false if insufficient capacity.
	TryConsume(n int) bool

	// TimeUntilAvailable returns how long until n tokens would be available (read-only).
	TimeUntilAvailable(n int) time.Duration
}
