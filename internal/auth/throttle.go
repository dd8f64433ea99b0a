package auth

import (
	"context"
	"strings"
	"time"

	"shellnote/internal/cache"
)

const throttleKeyPrefix = "throttle:"

// Throttle is a fixed-window request counter over Redis for abuse-prone auth
// endpoints. It fails open: without Redis (nil cache, or Redis unreachable)
// every request is allowed, so it never takes the login path down.
type Throttle struct {
	cache  *cache.Client
	limit  int64
	window time.Duration
}

// NewThrottle creates a throttle allowing limit requests per key per window.
func NewThrottle(cache *cache.Client, limit int64, window time.Duration) *Throttle {
	return &Throttle{
		cache:  cache,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether another request for the key fits into the current
// window.
func (t *Throttle) Allow(ctx context.Context, scope, key string) bool {
	if t == nil || t.cache == nil {
		return true
	}
	n, err := t.cache.Incr(ctx, throttleKeyPrefix+scope+":"+strings.ToLower(key), t.window)
	if err != nil || n == 0 {
		return true
	}
	return n <= t.limit
}
