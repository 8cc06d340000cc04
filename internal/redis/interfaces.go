package redis

import (
	"context"
	"time"

	"rideflux/internal/domain"
)

// LocationStoreInterface defines the interface for driver location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64, vehicle domain.VehicleClass) error
	RemoveDriver(ctx context.Context, driverID string, vehicle domain.VehicleClass) error
	FindNearby(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, radiusKm float64, count int) ([]DriverLocation, error)
	CountNearby(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, radiusKm float64) (int, error)
	IsAlive(ctx context.Context, driverID string) (bool, error)
}

// SurgeStoreInterface defines the interface for surge counters and caches.
type SurgeStoreInterface interface {
	RecordDemand(ctx context.Context, zone string) error
	GetDemand(ctx context.Context, zone string) (int64, error)
	GetMultiplier(ctx context.Context, zone string) (float64, bool, error)
	SetMultiplier(ctx context.Context, zone string, multiplier float64) error
}

// ExpiryQueueInterface defines the interface for the offer expiry queue.
type ExpiryQueueInterface interface {
	Enqueue(ctx context.Context, offerID string, expiresAt time.Time) error
	Due(ctx context.Context, now time.Time) ([]string, error)
	Remove(ctx context.Context, offerIDs ...string) error
}

// RideCacheInterface defines the interface for ride snapshot caching.
type RideCacheInterface interface {
	Set(ctx context.Context, ride *CachedRide) error
	Get(ctx context.Context, rideID string) (*CachedRide, error)
	Invalidate(ctx context.Context, rideID string) error
}

// IdempotencyStoreInterface defines the interface for the fast-path
// idempotency response cache.
type IdempotencyStoreInterface interface {
	Get(ctx context.Context, key, endpoint string) (*CachedResponse, error)
	Set(ctx context.Context, key, endpoint string, resp *CachedResponse) error
}

// EventPublisherInterface defines the interface for pub/sub event fan-out.
type EventPublisherInterface interface {
	PublishRideEvent(ctx context.Context, rideID, eventType string, data map[string]interface{}) error
	PublishDriverEvent(ctx context.Context, driverID, eventType string, data map[string]interface{}) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface    = (*LocationStore)(nil)
	_ SurgeStoreInterface       = (*SurgeStore)(nil)
	_ ExpiryQueueInterface      = (*ExpiryQueue)(nil)
	_ IdempotencyStoreInterface = (*IdempotencyStore)(nil)
	_ RideCacheInterface        = (*RideCache)(nil)
	_ EventPublisherInterface   = (*EventPublisher)(nil)
)
