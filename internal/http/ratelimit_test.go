package http

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3)
	rl.now = func() time.Time { return clock }
	t.Cleanup(rl.stop)

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("fourth request in the window should be rejected")
	}

	// Other clients get their own window.
	if !rl.allow("10.0.0.2") {
		t.Error("separate client should not be limited")
	}

	// The window resets once it has elapsed.
	clock = clock.Add(rateLimitWindow)
	if !rl.allow("10.0.0.1") {
		t.Error("request in a fresh window should be allowed")
	}
}
