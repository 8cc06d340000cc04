package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyTTL is the lifetime of the fast-path response cache.
const IdempotencyTTL = time.Hour

// CachedResponse is a stored endpoint response keyed by idempotency key.
type CachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// IdempotencyStore is the Redis tier of the idempotency substrate. The
// durable tier lives in Postgres.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func idempotencyKey(key, endpoint string) string {
	return fmt.Sprintf("idemp:%s:%s", key, endpoint)
}

// Get retrieves a cached response. A miss returns (nil, nil).
func (s *IdempotencyStore) Get(ctx context.Context, key, endpoint string) (*CachedResponse, error) {
	data, err := s.client.Get(ctx, idempotencyKey(key, endpoint)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var resp CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Set caches a response for future replays of the same key and endpoint.
func (s *IdempotencyStore) Set(ctx context.Context, key, endpoint string, resp *CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKey(key, endpoint), data, IdempotencyTTL).Err()
}
