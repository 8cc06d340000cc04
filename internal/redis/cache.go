package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RideCacheTTL is the lifetime of a ride snapshot.
const RideCacheTTL = 5 * time.Minute

const rideCachePrefix = "ride:"

// CachedRide is the read-side snapshot of a ride served on cache hits.
type CachedRide struct {
	ID              string  `json:"id"`
	RiderID         string  `json:"rider_id"`
	Status          string  `json:"status"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	DestLat         float64 `json:"dest_lat"`
	DestLng         float64 `json:"dest_lng"`
	VehicleClass    string  `json:"vehicle_type"`
	SurgeMultiplier string  `json:"surge_multiplier"`
	EstimatedFare   string  `json:"estimated_fare"`
	MatchedDriverID string  `json:"matched_driver_id,omitempty"`
}

// RideCache stores ride snapshots in Redis.
type RideCache struct {
	client *redis.Client
}

// NewRideCache creates a new RideCache.
func NewRideCache(client *redis.Client) *RideCache {
	return &RideCache{client: client}
}

// Set stores a ride snapshot with the standard TTL.
func (c *RideCache) Set(ctx context.Context, ride *CachedRide) error {
	data, err := json.Marshal(ride)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rideCachePrefix+ride.ID, data, RideCacheTTL).Err()
}

// Get retrieves a ride snapshot. A cache miss returns (nil, nil).
func (c *RideCache) Get(ctx context.Context, rideID string) (*CachedRide, error) {
	data, err := c.client.Get(ctx, rideCachePrefix+rideID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var ride CachedRide
	if err := json.Unmarshal(data, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// Invalidate removes a ride snapshot.
func (c *RideCache) Invalidate(ctx context.Context, rideID string) error {
	return c.client.Del(ctx, rideCachePrefix+rideID).Err()
}
