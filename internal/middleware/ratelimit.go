package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
	"github.com/rs/zerolog/log"
)

// window tracks the counter for a single principal within the current
// fixed window: a fixed-window counter, not a token bucket.
type window struct {
	count      int
	windowEnds time.Time
	mu         sync.Mutex
}

// RateLimiter enforces a fixed-window request count per principal. Each
// principal gets its own window that resets wholesale once it expires,
// rather than refilling continuously.
type RateLimiter struct {
	windows map[string]*window
	size    time.Duration
	max     int
	mu      sync.RWMutex
}

// NewRateLimiter builds a limiter allowing max requests per principal in
// each window of the given size.
func NewRateLimiter(size time.Duration, max int) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		size:    size,
		max:     max,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) getWindow(key string) *window {
	rl.mu.RLock()
	w, ok := rl.windows[key]
	rl.mu.RUnlock()
	if ok {
		return w
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if w, ok := rl.windows[key]; ok {
		return w
	}
	w = &window{windowEnds: time.Now().Add(rl.size)}
	rl.windows[key] = w
	return w
}

// Allow reports whether the principal has capacity remaining in its
// current window, the remaining count, and when the window resets.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetAt time.Time) {
	w := rl.getWindow(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if now.After(w.windowEnds) {
		w.count = 0
		w.windowEnds = now.Add(rl.size)
	}

	if w.count >= rl.max {
		return false, 0, w.windowEnds
	}

	w.count++
	return true, rl.max - w.count, w.windowEnds
}

// cleanupLoop evicts windows that have been idle well past their reset,
// keeping the map from growing unbounded across distinct principals.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-time.Hour)
		for key, w := range rl.windows {
			w.mu.Lock()
			stale := w.windowEnds.Before(cutoff)
			w.mu.Unlock()
			if stale {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit returns middleware enforcing the configured fixed-window
// limit, keyed by the authenticated principal set in context by the
// External Token Verifier. Requests with no principal (pre-auth paths
// such as /health) are not rate limited.
func RateLimit(size time.Duration, max int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(size, max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := Principal(r.Context())
			if !ok || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, resetAt := limiter.Allow(key)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn().
					Str("principal", key).
					Str("path", r.URL.Path).
					Int("retryAfter", retryAfter).
					Msg("rate limit exceeded")

				problemdetails.WriteKind(w, problemdetails.KindRateLimited, "rate limit exceeded, retry after "+strconv.Itoa(retryAfter)+" seconds")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
