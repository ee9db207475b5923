package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles write routes with fixed-window counters in Redis.
// Without a Redis client, or when disabled, every request is allowed.
type RateLimiter struct {
	rdb     *redis.Client
	prefix  string
	enabled bool
}

// NewRateLimiter returns a RateLimiter storing counters under prefix.
func NewRateLimiter(rdb *redis.Client, prefix string, enabled bool) *RateLimiter {
	return &RateLimiter{rdb: rdb, prefix: prefix, enabled: enabled}
}

// Allow counts one request by id against resource and reports whether it is
// within limit for the current window.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled || l.rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("%srl:%s:%s", l.prefix, resource, id)

	// INCR and set EXPIRE if new
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// Limit returns a Fiber middleware enforcing limit requests per window. It
// keys by the authenticated viewer when known, otherwise by remote IP, and
// lets requests through when Redis fails.
func (l *RateLimiter) Limit(limit int, window time.Duration, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := ViewerID(c); uid != 0 {
			id = fmt.Sprintf("user:%d", uid)
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit check failed",
				"resource", resource, "error", err)
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
