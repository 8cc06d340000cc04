package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_RoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(client)

	resp := &CachedResponse{
		StatusCode: 201,
		Body:       json.RawMessage(`{"id":"ride-1"}`),
	}
	payload, err := json.Marshal(resp)
	require.NoError(t, err)

	mock.ExpectSet("idemp:abc:/v1/rides", payload, IdempotencyTTL).SetVal("OK")
	require.NoError(t, store.Set(context.Background(), "abc", "/v1/rides", resp))

	mock.ExpectGet("idemp:abc:/v1/rides").SetVal(string(payload))
	got, err := store.Get(context.Background(), "abc", "/v1/rides")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.StatusCode)
	assert.JSONEq(t, `{"id":"ride-1"}`, string(got.Body))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewIdempotencyStore(client)

	mock.ExpectGet("idemp:missing:/v1/rides").RedisNil()
	got, err := store.Get(context.Background(), "missing", "/v1/rides")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideCache_RoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRideCache(client)

	ride := &CachedRide{
		ID:              "ride-1",
		RiderID:         "rider-1",
		Status:          "matching",
		VehicleClass:    "sedan",
		SurgeMultiplier: "1.50",
		EstimatedFare:   "154.00",
	}
	payload, err := json.Marshal(ride)
	require.NoError(t, err)

	mock.ExpectSet("ride:ride-1", payload, RideCacheTTL).SetVal("OK")
	require.NoError(t, cache.Set(context.Background(), ride))

	mock.ExpectGet("ride:ride-1").SetVal(string(payload))
	got, err := cache.Get(context.Background(), "ride-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "matching", got.Status)

	mock.ExpectGet("ride:unknown").RedisNil()
	got, err = cache.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectDel("ride:ride-1").SetVal(1)
	require.NoError(t, cache.Invalidate(context.Background(), "ride-1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventPublisher_MirrorsDashboard(t *testing.T) {
	client, mock := redismock.NewClientMock()
	pub := NewEventPublisher(client)

	event := Event{
		Type:   "ride:requested",
		RideID: "ride-1",
		Data:   map[string]interface{}{"status": "pending"},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("ride:ride-1", payload).SetVal(1)
	mock.ExpectPublish(DashboardChannel, payload).SetVal(0)

	err = pub.PublishRideEvent(context.Background(), "ride-1", "ride:requested", event.Data)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
