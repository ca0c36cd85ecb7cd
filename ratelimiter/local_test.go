package ratelimiter

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(capacity int, interval time.Duration) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	tb := NewTokenBucket(capacity, interval)
	tb.now = clock.Now
	tb.last = clock.Now()
	return tb, clock
}

func TestTokenBucket_TryConsume(t *testing.T) {
	tb, _ := newTestBucket(10, time.Minute)

	if !tb.TryConsume(5) {
		t.Fatal("failed to consume tokens from full bucket")
	}
	if got := tb.Remaining(); got != 5 {
		t.Errorf("expected 5 remaining tokens, got %d", got)
	}
	if tb.TryConsume(6) {
		t.Error("should not be able to consume more than remaining")
	}
	if !tb.TryConsume(5) {
		t.Error("should be able to consume exactly the remaining tokens")
	}
	if tb.TryConsume(1) {
		t.Error("should not consume from an empty bucket")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	tb, clock := newTestBucket(60, time.Minute) // 1 token per second

	if !tb.TryConsume(60) {
		t.Fatal("failed to drain bucket")
	}

	clock.Advance(500 * time.Millisecond)
	if tb.TryConsume(1) {
		t.Error("half a token should not be enough")
	}

	clock.Advance(500 * time.Millisecond)
	if !tb.TryConsume(1) {
		t.Error("should succeed after one refill period")
	}

	clock.Advance(time.Hour)
	if got := tb.Remaining(); got != 60 {
		t.Errorf("refill should cap at capacity, got %d", got)
	}
}

func TestTokenBucket_TimeUntilAvailable(t *testing.T) {
	tb, clock := newTestBucket(60, time.Minute)

	if wait := tb.TimeUntilAvailable(1); wait != 0 {
		t.Errorf("full bucket should not wait, got %v", wait)
	}

	tb.TryConsume(60)
	if wait := tb.TimeUntilAvailable(1); wait != time.Second {
		t.Errorf("expected 1s wait, got %v", wait)
	}

	clock.Advance(250 * time.Millisecond)
	if wait := tb.TimeUntilAvailable(1); wait != 750*time.Millisecond {
		t.Errorf("expected 750ms wait, got %v", wait)
	}

	// The informational query must not consume anything.
	clock.Advance(750 * time.Millisecond)
	if !tb.TryConsume(1) {
		t.Error("token should be available after waiting")
	}
}

func TestNew_DisabledRate(t *testing.T) {
	if New(0) != nil {
		t.Error("zero rate should disable limiting")
	}
	if New(-3) != nil {
		t.Error("negative rate should disable limiting")
	}
	if New(10) == nil {
		t.Error("positive rate should build a limiter")
	}
}
