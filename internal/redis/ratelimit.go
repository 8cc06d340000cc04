package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter is a Redis-backed sliding window limiter keyed by client IP.
// Each request is a sorted-set member scored by its timestamp; entries
// outside the window are pruned on every check.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int64
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, window time.Duration, limit int64) *RateLimiter {
	return &RateLimiter{client: client, window: window, limit: limit}
}

// Allow records a request for the client and reports whether it is within
// the limit.
func (l *RateLimiter) Allow(ctx context.Context, clientIP string) (bool, error) {
	key := rateLimitPrefix + clientIP
	now := time.Now()
	windowStart := now.Add(-l.window)

	member := strconv.FormatInt(now.UnixNano(), 10)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatFloat(float64(windowStart.UnixNano())/1e9, 'f', -1, 64))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()) / 1e9, Member: member})
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return countCmd.Val() < l.limit, nil
}
