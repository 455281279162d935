package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propcore/backend/internal/infrastructure/logger"
	"github.com/propcore/backend/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter gives every key a token bucket of limit requests that refills
// evenly over window. Buckets live in process memory, so each API instance
// enforces its own budget.
type RateLimiter struct {
	limit  int
	window time.Duration
	every  rate.Limit

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window and key
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.evictIdle(2 * window)
	return rl
}

// evictIdle drops buckets that have been full for a while
func (rl *RateLimiter) evictIdle(idle time.Duration) {
	tick := time.NewTicker(idle)
	defer tick.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-tick.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > idle {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the eviction goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) bucketFor(key string) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b
}

// Allow takes one token from key's bucket
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucketFor(key).limiter.Allow()
}

// Remaining returns the whole tokens left in key's bucket
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	rl.mu.Unlock()
	if !ok {
		return rl.limit
	}
	return max(0, int(math.Floor(b.limiter.Tokens())))
}

// retryAfter is the time one token takes to refill, in whole seconds
func (rl *RateLimiter) retryAfter() int {
	perToken := rl.window / time.Duration(rl.limit)
	return max(1, int(math.Ceil(perToken.Seconds())))
}

// RateLimit limits requests per organization, falling back to the client IP
// for unauthenticated routes. Place it after the JWT middleware.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		if orgID, ok := OrgID(c); ok {
			return "org:" + orgID.String()
		}
		return "ip:" + c.ClientIP()
	})
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(limiter.retryAfter()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
