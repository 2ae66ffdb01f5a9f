package websocket

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("s") {
			t.Fatalf("event %d should be allowed", i+1)
		}
	}
	if rl.Allow("s") {
		t.Error("fourth event in the window should be rejected")
	}
	if !rl.Allow("other") {
		t.Error("limits are per key")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("s") {
		t.Error("new window should reset the count")
	}
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(30 * time.Second)
	rl.Allow("s")
	if rl.Allow("s") {
		t.Fatal("second event should be rejected")
	}

	if got := rl.Prune(); got != 0 {
		t.Errorf("Expected nothing pruned inside the window, got %d", got)
	}
	if rl.Allow("s") {
		t.Error("pruning must not refill a live window")
	}

	now = now.Add(30 * time.Second)
	if got := rl.Prune(); got != 1 {
		t.Errorf("Expected 1 expired key pruned, got %d", got)
	}
	if rl.Tracked() != 1 {
		t.Errorf("Expected 1 tracked key, got %d", rl.Tracked())
	}
	if rl.Allow("s") {
		t.Error("window for s has not elapsed yet")
	}
}

func TestRateLimiter_ZeroLimit(t *testing.T) {
	rl := NewRateLimiter(0)
	if rl.Allow("s") {
		t.Error("zero limit rejects everything")
	}
}
