package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/plugincreator/internal/apierrors"
)

// RateLimiter implements a per-key token bucket refilled over one hour.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cleanup time.Duration
	now     func() time.Time
}

type bucket struct {
	tokens     float64
	limit      float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter. Stale buckets are swept until ctx is done.
func NewRateLimiter(ctx context.Context) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		cleanup: 10 * time.Minute,
		now:     time.Now,
	}
	go rl.cleanupLoop(ctx)
	return rl
}

// Allow checks if a request is allowed and consumes a token
func (rl *RateLimiter) Allow(key string, perHour int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens:     float64(perHour),
			limit:      float64(perHour),
			refillRate: float64(perHour) / 3600.0,
			lastRefill: now,
		}
		rl.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.limit {
		b.tokens = b.limit
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Remaining returns remaining tokens for a key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, exists := rl.buckets[key]; exists {
		return int(b.tokens)
	}
	return 0
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.cleanup)
	for key, b := range rl.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// RateLimitByIP limits each client IP to requestsPerHour. Zero or less disables it.
func RateLimitByIP(rl *RateLimiter, requestsPerHour int) gin.HandlerFunc {
	if rl == nil || requestsPerHour <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limit := strconv.Itoa(requestsPerHour)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()

		if !rl.Allow(key, requestsPerHour) {
			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(3600/requestsPerHour)+1))
			apierrors.Error(c, apierrors.CodeRateLimited)
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))
		c.Next()
	}
}
