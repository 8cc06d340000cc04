package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
)

func TestLocationStore_UpdateLocation(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewLocationStore(client)

	mock.ExpectGeoAdd("drivers:geo:sedan", &redis.GeoLocation{
		Name:      "drv-1",
		Longitude: 77.5946,
		Latitude:  12.9716,
	}).SetVal(1)
	mock.Regexp().ExpectSet("drivers:lastping:drv-1", `\d+`, HeartbeatTTL).SetVal("OK")

	err := store.UpdateLocation(context.Background(), "drv-1", 12.9716, 77.5946, domain.VehicleSedan)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationStore_RemoveDriver(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewLocationStore(client)

	mock.ExpectZRem("drivers:geo:mini", "drv-2").SetVal(1)
	mock.ExpectDel("drivers:lastping:drv-2").SetVal(1)

	err := store.RemoveDriver(context.Background(), "drv-2", domain.VehicleMini)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationStore_FindNearby(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewLocationStore(client)

	query := &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  77.5946,
			Latitude:   12.9716,
			Radius:     2.0,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      10,
		},
		WithCoord: true,
		WithDist:  true,
	}
	mock.ExpectGeoSearchLocation("drivers:geo:sedan", query).SetVal([]redis.GeoLocation{
		{Name: "drv-near", Dist: 0.4, Latitude: 12.9720, Longitude: 77.5950},
		{Name: "drv-far", Dist: 1.8, Latitude: 12.9850, Longitude: 77.6000},
	})

	got, err := store.FindNearby(context.Background(), 12.9716, 77.5946, domain.VehicleSedan, 2.0, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "drv-near", got[0].DriverID)
	assert.InDelta(t, 0.4, got[0].DistanceKm, 1e-9)
	assert.Equal(t, "drv-far", got[1].DriverID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationStore_IsAlive(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewLocationStore(client)

	mock.ExpectExists("drivers:lastping:drv-1").SetVal(1)
	alive, err := store.IsAlive(context.Background(), "drv-1")
	require.NoError(t, err)
	assert.True(t, alive)

	mock.ExpectExists("drivers:lastping:drv-stale").SetVal(0)
	alive, err = store.IsAlive(context.Background(), "drv-stale")
	require.NoError(t, err)
	assert.False(t, alive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpiryQueue(t *testing.T) {
	client, mock := redismock.NewClientMock()
	queue := NewExpiryQueue(client)

	deadline := time.Date(2024, 5, 1, 12, 0, 20, 0, time.UTC)

	mock.ExpectZAdd("offer_expiry_queue", redis.Z{
		Score:  float64(deadline.Unix()),
		Member: "offer-1",
	}).SetVal(1)
	require.NoError(t, queue.Enqueue(context.Background(), "offer-1", deadline))

	now := deadline.Add(time.Second)
	mock.ExpectZRangeByScore("offer_expiry_queue", &redis.ZRangeBy{
		Min: "-inf",
		Max: "1714564821",
	}).SetVal([]string{"offer-1"})

	due, err := queue.Due(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"offer-1"}, due)

	mock.ExpectZRem("offer_expiry_queue", "offer-1").SetVal(1)
	require.NoError(t, queue.Remove(context.Background(), "offer-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpiryQueue_RemoveEmpty(t *testing.T) {
	client, _ := redismock.NewClientMock()
	queue := NewExpiryQueue(client)

	// No offers means no Redis round trip.
	assert.NoError(t, queue.Remove(context.Background()))
}
