package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"learning-service/internal/metrics"
	"learning-service/internal/repository"
)

// RateLimit rejects requests once a client IP exceeds maxRequests within the
// sliding window. The counter store is injected so deployments can share
// limits across instances via Redis while tests use the in-memory store.
// Counting failures never block the request.
func RateLimit(store repository.CounterStore, maxRequests int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("Rate limit counter error for %s: %v", c.ClientIP(), err)
			c.Next()
			return
		}
		if count > maxRequests {
			metrics.RateLimitRejections.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
