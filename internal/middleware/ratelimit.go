package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tickethub/tickethub/internal/config"
)

// NewTokenBucket returns a distributed token-bucket rate limiter
// keyed by client IP, authenticated user and route. Bucket state
// lives in Redis and is refilled atomically by a Lua script, so all
// instances of the service share one budget per key. Without a Redis
// client the middleware is a pass-through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	bucket := redis.NewScript(`
		local key = KEYS[1]
		local now_ms = tonumber(ARGV[1])
		local capacity = tonumber(ARGV[2])
		local refill = tonumber(ARGV[3])
		local interval_ms = tonumber(ARGV[4])
		local ttl_s = tonumber(ARGV[5])

		local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
		local tokens = tonumber(state[1])
		local refilled = tonumber(state[2])
		if tokens == nil or refilled == nil then
			tokens = capacity
			refilled = now_ms
		end

		local steps = math.floor(math.max(0, now_ms - refilled) / interval_ms)
		if steps > 0 then
			tokens = math.min(capacity, tokens + steps * refill)
			refilled = refilled + steps * interval_ms
		end

		local allowed = 0
		local retry_ms = 0
		if tokens > 0 then
			allowed = 1
			tokens = tokens - 1
		else
			retry_ms = math.max(0, interval_ms - (now_ms - refilled))
		end

		redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
		redis.call('EXPIRE', key, ttl_s)
		return { allowed, tokens, retry_ms }
	`)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}
			vals, err := bucket.Run(c.Request().Context(), rdb, []string{key}, args...).Int64Slice()
			if err != nil || len(vals) != 3 {
				// A broken limiter must not take the API down with it.
				return next(c)
			}
			allowed, remaining, retryMS := vals[0] == 1, vals[1], vals[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				retryAfter := (retryMS + 999) / 1000
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

// rateKey scopes the bucket to ip + user + route so one noisy client
// cannot starve others and unauthenticated traffic shares per-IP
// buckets.
func rateKey(prefix string, c echo.Context) string {
	user := "guest"
	if v := c.Get("user_id"); v != nil {
		user = fmt.Sprint(v)
	}
	return prefix + ":" + c.RealIP() + ":" + user + ":" + c.Path()
}
