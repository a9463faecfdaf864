package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps window state in Redis, so the cap holds across server
// instances. Counters use a fixed window: INCR plus a TTL set when the
// window opens.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Decision, error) {
	redisKey := "ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimit incr: %w", err)
	}

	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return nil, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	if count > int64(limit) {
		ttl, err := l.client.PTTL(ctx, redisKey).Result()
		if err != nil {
			return nil, fmt.Errorf("ratelimit ttl: %w", err)
		}
		if ttl < 0 {
			// Key lost its TTL (e.g. expiry raced the INCR); reopen the
			// window rather than rejecting forever.
			if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
				return nil, fmt.Errorf("ratelimit expire: %w", err)
			}
			ttl = window
		}
		return &Decision{
			Allowed:    false,
			Remaining:  0,
			Limit:      limit,
			RetryAfter: ttl,
		}, nil
	}

	return &Decision{
		Allowed:   true,
		Remaining: limit - int(count),
		Limit:     limit,
	}, nil
}
