package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window rate limiter backed by Redis,
// scoped per authenticated user (falling back to the client IP for
// anonymous requests).  When the limit is exceeded the request is
// rejected with 429 and a Retry-After header.  A nil Redis client or
// a Redis error disables limiting for the request: availability wins
// over throttling.
func RateLimit(client *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if client == nil || limit <= 0 {
				return next(c)
			}

			scope := c.RealIP()
			if v, ok := c.Get("user_id").(string); ok && v != "" {
				scope = v
			} else if v, ok := c.Get("user_id").(float64); ok {
				scope = strconv.FormatUint(uint64(v), 10)
			}
			key := fmt.Sprintf("ratelimit:%s:%s:%d",
				scope, c.Path(), time.Now().Unix()/int64(window.Seconds()))

			ctx := c.Request().Context()
			pipe := client.Pipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				return next(c)
			}
			if incr.Val() > int64(limit) {
				c.Response().Header().Set("Retry-After",
					strconv.Itoa(int(window.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
