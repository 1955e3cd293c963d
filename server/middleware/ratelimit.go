package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/drivegate/errors"
	"github.com/kbukum/drivegate/resilience"
)

// KeyFunc extracts the rate limit key from a request.
type KeyFunc func(*gin.Context) string

// RateLimit rejects requests with 429 RATE_LIMITED once the caller's token
// bucket in limiter is empty. keyFunc defaults to IPBasedKey.
func RateLimit(limiter *resilience.KeyedRateLimiter, keyFunc KeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = IPBasedKey
	}
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			c.Header("Retry-After", "60")
			abortWithError(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}
