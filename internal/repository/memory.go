package repository

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter is the in-process fallback used when redis is absent or
// down. One token bucket per user: the budget refills evenly over the window
// with a burst of the full limit. Limits do not survive restarts and are per
// instance.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{limiters: make(map[int64]*rate.Limiter)}
}

func (r *MemoryRateLimiter) Allow(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	limiter, ok := r.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		r.limiters[userID] = limiter
	}
	r.mu.Unlock()

	return limiter.Allow(), nil
}
