package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (i *limiterInfo) touch(now time.Time) {
	i.mu.Lock()
	i.lastSeen = now
	i.mu.Unlock()
}

func (i *limiterInfo) idleSince(now time.Time) time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	return now.Sub(i.lastSeen)
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters   sync.Map
	rps        int
	expiration time.Duration
}

// NewIPRateLimiter allows rps requests per second per IP, with a burst of
// rps. Buckets idle for longer than expiration are dropped by Cleanup.
// rps <= 0 disables limiting.
func NewIPRateLimiter(rps int, expiration time.Duration) *IPRateLimiter {
	return &IPRateLimiter{rps: rps, expiration: expiration}
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ip string) bool {
	if l.rps <= 0 {
		return true
	}

	now := time.Now()
	// Use LoadOrStore to ensure thread safety
	actual, _ := l.limiters.LoadOrStore(ip, &limiterInfo{
		limiter:  rate.NewLimiter(rate.Limit(l.rps), l.rps),
		lastSeen: now,
	})

	info := actual.(*limiterInfo)
	info.touch(now)
	return info.limiter.Allow()
}

// Cleanup drops buckets that have been idle longer than the expiration.
func (l *IPRateLimiter) Cleanup(now time.Time) {
	l.limiters.Range(func(key, value interface{}) bool {
		if value.(*limiterInfo).idleSince(now) > l.expiration {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (l *IPRateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Cleanup(now)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
