package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements a sliding window rate limiter using Redis
type RedisRateLimiter struct {
	client *redis.Client
	rate   int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, rate int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		rate:   rate,
		window: window,
		prefix: "ratelimit:render:",
	}
}

// Allow checks if a request should be allowed for the given key.
// Returns true if allowed, false if rate limited. Fails open when
// Redis is unreachable so a limiter outage never blocks rendering.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.client == nil {
		return true
	}

	now := time.Now().UnixNano()
	windowStart := now - int64(rl.window)
	redisKey := rl.prefix + key

	pipe := rl.client.Pipeline()

	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))

	// Add current request timestamp
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: now})

	// Count requests in window
	countCmd := pipe.ZCard(ctx, redisKey)

	// Set TTL for the key
	pipe.Expire(ctx, redisKey, rl.window)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return true
	}

	return countCmd.Val() <= int64(rl.rate)
}

// Reset resets the rate limit for a key
func (rl *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	if rl.client == nil {
		return nil
	}
	return rl.client.Del(ctx, rl.prefix+key).Err()
}
