package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rideflux/internal/domain"
)

const (
	geoKeyPrefix       = "drivers:geo:"
	heartbeatKeyPrefix = "drivers:lastping:"

	// HeartbeatTTL is how long a driver stays visible to matching after
	// their last location ping.
	HeartbeatTTL = 30 * time.Second
)

// DriverLocation represents a driver's position in the geo index.
type DriverLocation struct {
	DriverID   string
	DistanceKm float64
	Lat        float64
	Lng        float64
}

// LocationStore handles driver location operations in Redis. One geo set is
// kept per vehicle class so searches never cross classes.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

func geoKey(vehicle domain.VehicleClass) string {
	return geoKeyPrefix + string(vehicle)
}

func heartbeatKey(driverID string) string {
	return heartbeatKeyPrefix + driverID
}

// UpdateLocation stores a driver's position using GEOADD and refreshes the
// heartbeat key in the same pipeline.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64, vehicle domain.VehicleClass) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)

	pipe := s.client.Pipeline()
	pipe.GeoAdd(ctx, geoKey(vehicle), &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	})
	pipe.Set(ctx, heartbeatKey(driverID), now, HeartbeatTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveDriver removes a driver from the geo index and drops their heartbeat.
func (s *LocationStore) RemoveDriver(ctx context.Context, driverID string, vehicle domain.VehicleClass) error {
	pipe := s.client.Pipeline()
	pipe.ZRem(ctx, geoKey(vehicle), driverID)
	pipe.Del(ctx, heartbeatKey(driverID))
	_, err := pipe.Exec(ctx)
	return err
}

// FindNearby returns up to count drivers within radiusKm of the given point,
// sorted ascending by distance.
func (s *LocationStore) FindNearby(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, radiusKm float64, count int) ([]DriverLocation, error) {
	results, err := s.client.GeoSearchLocation(ctx, geoKey(vehicle), &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      count,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("geosearch %s: %w", geoKey(vehicle), err)
	}

	locations := make([]DriverLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, DriverLocation{
			DriverID:   r.Name,
			DistanceKm: r.Dist,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
		})
	}
	return locations, nil
}

// CountNearby returns the number of drivers within radiusKm of the given
// point. Used as the supply signal for surge pricing.
func (s *LocationStore) CountNearby(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, radiusKm float64) (int, error) {
	results, err := s.client.GeoSearch(ctx, geoKey(vehicle), &redis.GeoSearchQuery{
		Longitude:  lng,
		Latitude:   lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// IsAlive reports whether a driver's heartbeat key still exists.
func (s *LocationStore) IsAlive(ctx context.Context, driverID string) (bool, error) {
	n, err := s.client.Exists(ctx, heartbeatKey(driverID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
