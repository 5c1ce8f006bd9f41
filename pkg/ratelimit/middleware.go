package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware applies sliding-window rate limiting to every request,
// picking the budget category from the request path. Booking creation is
// the contended path and gets the tightest budget.
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitType := classify(c.Request.Method, c.Request.URL.Path)

		result, err := limiter.IsAllowed(c.Request.Context(), c.ClientIP(), limitType)
		if err != nil {
			// Redis trouble must not take the API down; fail open.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}

		c.Next()
	}
}

func classify(method, path string) RateLimitType {
	switch {
	case strings.Contains(path, "/bookings") && method != http.MethodGet:
		return RateLimitTypeBooking
	case strings.Contains(path, "/admin"):
		return RateLimitTypeAdmin
	case strings.Contains(path, "/auth"):
		return RateLimitTypeAuth
	case method == http.MethodGet:
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}
