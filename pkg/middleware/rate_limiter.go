package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/easyprospect/api/pkg/models"
)

// RateLimits is a token bucket size and refill rate
type RateLimits struct {
	RequestsPerMinute int
	Burst             int
}

// RateLimiter keeps one token bucket per user, or per client IP for
// anonymous requests.
type RateLimiter struct {
	limits   RateLimits
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter with the given per-client limits
func NewRateLimiter(limits RateLimits) *RateLimiter {
	if limits.RequestsPerMinute <= 0 {
		limits.RequestsPerMinute = 60
	}
	if limits.Burst <= 0 {
		limits.Burst = 10
	}
	return &RateLimiter{limits: limits, limiters: make(map[string]*rate.Limiter)}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(float64(rl.limits.RequestsPerMinute)/60.0), rl.limits.Burst)
	rl.limiters[key] = l
	return l
}

// Cleanup drops idle buckets every interval until ctx is done
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
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

// sweep removes buckets that are full again, meaning unused since they refilled
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, l := range rl.limiters {
		if l.Tokens() >= float64(l.Burst()) {
			delete(rl.limiters, key)
		}
	}
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if userID, ok := c.Get("user_id").(int); ok {
				key = "user:" + strconv.Itoa(userID)
			}

			if !rl.limiter(key).Allow() {
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:   "rate_limit_exceeded",
					Message: "Too many requests, please try again later",
				})
			}
			return next(c)
		}
	}
}
