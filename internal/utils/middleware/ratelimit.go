package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/flowspace/server/internal/shared/ratelimit"
	"github.com/flowspace/server/internal/shared/response"
	"github.com/flowspace/server/internal/utils/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RateLimitRemaining is the header for remaining requests.
	RateLimitRemaining = "X-RateLimit-Remaining"
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// RateLimitConfig holds rate limit configuration.
type RateLimitConfig struct {
	// Scope prefixes keys and labels the rejection metric.
	Scope  string
	Limit  int
	Window time.Duration
	// KeyFunc generates the rate limit key from request. Default uses client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a middleware that limits requests using the given limiter.
// Limiter errors fail open.
func RateLimit(limiter ratelimit.Limiter, m *metrics.Metrics, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string {
			return "ip:" + c.ClientIP()
		}
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := cfg.Scope + ":" + cfg.KeyFunc(c)
		res, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		c.Header(RateLimitLimit, strconv.Itoa(cfg.Limit))
		c.Header(RateLimitRemaining, strconv.Itoa(res.Remaining))

		if !res.Allowed {
			m.RecordRateLimited(cfg.Scope)
			c.Header(RetryAfter, strconv.Itoa(int(cfg.Window.Seconds())))
			response.AbortWithCode(c, http.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			return
		}

		c.Next()
	}
}

// RateLimitByUser limits by user ID, falling back to client IP.
func RateLimitByUser(limiter ratelimit.Limiter, m *metrics.Metrics, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(limiter, m, RateLimitConfig{
		Scope:  scope,
		Limit:  limit,
		Window: window,
		KeyFunc: func(c *gin.Context) string {
			if userID := GetUserID(c); userID != uuid.Nil {
				return "user:" + userID.String()
			}
			return "ip:" + c.ClientIP()
		},
	})
}
