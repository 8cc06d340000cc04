package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/redis"
)

// RateLimit returns middleware enforcing a sliding window limit per client
// IP. A Redis failure lets the request through; throttling is protection,
// not a dependency.
func RateLimit(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			return
		}
		c.Next()
	}
}
