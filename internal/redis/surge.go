package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	surgeDemandPrefix     = "surge:demand:"
	surgeMultiplierPrefix = "surge:multiplier:"

	// SurgeDemandTTL is the sliding demand window per zone.
	SurgeDemandTTL = 5 * time.Minute
	// SurgeMultiplierTTL is how long a computed multiplier is reused.
	SurgeMultiplierTTL = 2 * time.Minute
)

// SurgeStore keeps per-zone demand counters and cached multipliers.
type SurgeStore struct {
	client *redis.Client
}

// NewSurgeStore creates a new SurgeStore.
func NewSurgeStore(client *redis.Client) *SurgeStore {
	return &SurgeStore{client: client}
}

// RecordDemand increments the zone's demand counter and refreshes its TTL.
func (s *SurgeStore) RecordDemand(ctx context.Context, zone string) error {
	key := surgeDemandPrefix + zone
	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, SurgeDemandTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetDemand returns the zone's current demand counter, zero when absent.
func (s *SurgeStore) GetDemand(ctx context.Context, zone string) (int64, error) {
	val, err := s.client.Get(ctx, surgeDemandPrefix+zone).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// GetMultiplier returns the cached multiplier for a zone. A miss returns
// (0, false, nil).
func (s *SurgeStore) GetMultiplier(ctx context.Context, zone string) (float64, bool, error) {
	val, err := s.client.Get(ctx, surgeMultiplierPrefix+zone).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	m, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return m, true, nil
}

// SetMultiplier caches a computed multiplier for a zone.
func (s *SurgeStore) SetMultiplier(ctx context.Context, zone string, multiplier float64) error {
	val := strconv.FormatFloat(multiplier, 'f', 2, 64)
	return s.client.Set(ctx, surgeMultiplierPrefix+zone, val, SurgeMultiplierTTL).Err()
}
