package websocket

import (
	"sync"
	"time"
)

// RateLimiter caps events per session in fixed one-minute windows
// FUNCTIONAL DISCOVERY: Limits are keyed by session, not connection, so
// opening a second tab does not double the budget
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientLimit
	now     func() time.Time
}

type clientLimit struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter allows perMinute events per key per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limit:   perMinute,
		window:  time.Minute,
		clients: make(map[string]*clientLimit),
		now:     time.Now,
	}
}

// Allow records one event for key and reports whether it fits the budget.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	cl, exists := rl.clients[key]
	if !exists {
		rl.clients[key] = &clientLimit{count: 1, windowStart: now}
		return rl.limit > 0
	}

	if now.Sub(cl.windowStart) >= rl.window {
		cl.count = 1
		cl.windowStart = now
		return rl.limit > 0
	}

	if cl.count >= rl.limit {
		return false
	}
	cl.count++
	return true
}

// Prune drops keys whose window has already elapsed. A key still inside its
// window keeps its count, so reconnecting does not refill the budget.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, cl := range rl.clients {
		if now.Sub(cl.windowStart) >= rl.window {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of keys with live state.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
