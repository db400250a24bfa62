// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles sensitive public operations per client identifier.
type RateLimiter interface {
	Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error)
}

// RedisRateLimiter counts attempts with INCR and a window-sized EXPIRE.
// It fails open: with Redis down, throttling is lost but the product keeps
// working.
type RedisRateLimiter struct {
	rdb *redis.Client
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter
func NewRedisRateLimiter(rdb *redis.Client) RateLimiter {
	return &RedisRateLimiter{rdb: rdb}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if l.rdb == nil {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, window)
	}
	if cnt > int64(limit) {
		return false, nil
	}
	return true, nil
}

// NoopRateLimiter never throttles. Used in tests and when no cache is configured.
type NoopRateLimiter struct{}

func NewNoopRateLimiter() RateLimiter {
	return &NoopRateLimiter{}
}

func (l *NoopRateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	return true, nil
}
