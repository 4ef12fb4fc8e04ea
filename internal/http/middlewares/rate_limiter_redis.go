package middlewares

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gin-gonic/gin"
)

// RedisRateLimiter is a fixed-window limiter on Redis INCR/EXPIRE, shared
// across replicas. It fails open: when redis errors, the request proceeds.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// key format: rl:<window_seconds>:<identifier>
func (rl *RedisRateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.client == nil {
			c.Next()
			return
		}

		ident := keyFn(c)
		if ident == "" {
			ident = clientIP(c)
		}

		key := "rl:" + strconv.FormatInt(int64(rl.window.Seconds()), 10) + ":" + ident

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		val, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			// first increment in this window, arm the expiry
			rl.client.Expire(ctx, key, rl.window)
		}

		if val > int64(rl.limit) {
			abortRateLimited(c)
			return
		}

		c.Next()
	}
}
