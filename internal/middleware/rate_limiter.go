package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitStore is the slice of the Redis API the limiter needs;
// *redis.Client satisfies it.
type RateLimitStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit enforces a fixed-window counter per client IP and route. The
// first request of a window sets the expiry; requests past the limit get
// 429 until the window rolls over. A nil store or a store outage degrades
// to pass-through: the limiter must never take the API down with it.
func RateLimit(store RateLimitStore, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.IP(), c.Route().Path)
		count, err := store.Incr(c.Context(), key).Result()
		if err != nil {
			log.Printf("Rate limiter unavailable, letting request through: %v", err)
			return c.Next()
		}
		if count == 1 {
			if err := store.Expire(c.Context(), key, window).Err(); err != nil {
				log.Printf("Failed to set rate limit window for %s: %v", key, err)
			}
		}
		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": fmt.Sprintf("No more than %d requests per %s", limit, window),
			})
		}
		return c.Next()
	}
}
