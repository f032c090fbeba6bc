package http

import (
	"sync"
	"time"
)

// mutationRateLimit caps non-GET requests per client per window.
const (
	mutationRateLimit = 60
	rateLimitWindow   = time.Minute
)

// rateLimiter counts mutating requests per client in fixed windows.
// A client's window starts at its first request and resets once the
// window has elapsed.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string]*rateWindow
	now     func() time.Time

	done chan struct{}
	once sync.Once
}

type rateWindow struct {
	start time.Time
	count int
}

func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{
		limit:   limit,
		windows: make(map[string]*rateWindow),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// allow records one request for clientIP and reports whether it is
// still within the window's limit.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.start) >= rateLimitWindow {
		rl.windows[clientIP] = &rateWindow{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= rl.limit
}

// sweep drops windows whose client has gone quiet. Active clients
// restart their window at least once per minute, so anything ten
// windows old is stale.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-10 * rateLimitWindow)
			for ip, w := range rl.windows {
				if w.start.Before(cutoff) {
					delete(rl.windows, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
