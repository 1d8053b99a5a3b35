package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"homestash/internal/auth"
)

// RateLimiter applies a fixed per-minute request budget per caller, keyed by
// principal name when authenticated, client IP otherwise.
type RateLimiter struct {
	client    *redis.Client
	perMinute int
}

func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{client: client, perMinute: perMinute}
}

// Limit counts requests in a one-minute fixed window. Redis being down never
// blocks traffic; the limiter just logs and lets the request through.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := auth.FromContext(c).Name
		if caller == "" {
			caller = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:%s", caller)
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(ctx, key, time.Minute)
		}

		if count > int64(rl.perMinute) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
