package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const offerExpiryQueueKey = "offer_expiry_queue"

// ExpiryQueue is a Redis sorted set of pending offer IDs scored by their
// expiry time. The matching engine's poller drains it.
type ExpiryQueue struct {
	client *redis.Client
}

// NewExpiryQueue creates a new ExpiryQueue.
func NewExpiryQueue(client *redis.Client) *ExpiryQueue {
	return &ExpiryQueue{client: client}
}

// Enqueue schedules an offer for expiry at the given deadline.
func (q *ExpiryQueue) Enqueue(ctx context.Context, offerID string, expiresAt time.Time) error {
	return q.client.ZAdd(ctx, offerExpiryQueueKey, redis.Z{
		Score:  float64(expiresAt.Unix()),
		Member: offerID,
	}).Err()
}

// Due returns all offer IDs whose deadline is at or before now.
func (q *ExpiryQueue) Due(ctx context.Context, now time.Time) ([]string, error) {
	return q.client.ZRangeByScore(ctx, offerExpiryQueueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}

// Remove drops offer IDs from the queue. The poller removes entries before
// processing them; the pending-status check on each offer keeps replays safe.
func (q *ExpiryQueue) Remove(ctx context.Context, offerIDs ...string) error {
	if len(offerIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(offerIDs))
	for i, id := range offerIDs {
		members[i] = id
	}
	return q.client.ZRem(ctx, offerExpiryQueueKey, members...).Err()
}
