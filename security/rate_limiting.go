package security

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles the public purchase endpoint by client IP with a
// fixed one-minute window. When a redis client is provided the counters are
// shared between instances; otherwise they live in process memory.
type RateLimiter struct {
	redis *redis.Client
	limit int

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(redisClient *redis.Client, limit int) *RateLimiter {
	return &RateLimiter{
		redis:   redisClient,
		limit:   limit,
		windows: make(map[string]*window),
	}
}

func (r *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.limit <= 0 {
				return next(c)
			}
			if !r.allow(c.Request().Context(), c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Too many requests. Please try again later.",
				})
			}
			return next(c)
		}
	}
}

func (r *RateLimiter) allow(ctx context.Context, ip string) bool {
	if r.redis != nil {
		return r.allowRedis(ctx, ip)
	}
	return r.allowMemory(ip)
}

func (r *RateLimiter) allowRedis(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("ratelimit:%s", ip)
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		// redis trouble must not block buyers
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, key, time.Minute)
	}
	return count <= int64(r.limit)
}

func (r *RateLimiter) allowMemory(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.windows[ip]
	if !ok || now.After(w.resetAt) {
		r.pruneLocked(now)
		r.windows[ip] = &window{count: 1, resetAt: now.Add(time.Minute)}
		return true
	}
	w.count++
	return w.count <= r.limit
}

// pruneLocked drops windows whose minute has passed so the map does not grow
// with one entry per client IP forever. Caller holds the mutex.
func (r *RateLimiter) pruneLocked(now time.Time) {
	for ip, w := range r.windows {
		if now.After(w.resetAt) {
			delete(r.windows, ip)
		}
	}
}
