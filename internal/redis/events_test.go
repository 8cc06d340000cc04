package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_MarshalFlattensFields(t *testing.T) {
	payload, err := json.Marshal(Event{
		Type:   "ride:offered",
		RideID: "ride-1",
		Data:   map[string]interface{}{"offer_id": "offer-1", "driver_name": "Asha"},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "ride:offered", decoded["type"])
	assert.Equal(t, "ride-1", decoded["ride_id"])
	assert.Equal(t, "offer-1", decoded["offer_id"])
	assert.Equal(t, "Asha", decoded["driver_name"])
	assert.NotContains(t, decoded, "data")
}

func TestEvent_MarshalOmitsAbsentEntityIDs(t *testing.T) {
	payload, err := json.Marshal(Event{
		Type:     "driver:status_changed",
		DriverID: "driver-1",
		Data:     map[string]interface{}{"old_status": "available", "new_status": "offline"},
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "driver-1", decoded["driver_id"])
	assert.NotContains(t, decoded, "ride_id")
}

func TestEventPublisher_MirrorsToDashboard(t *testing.T) {
	client, mock := redismock.NewClientMock()
	publisher := NewEventPublisher(client)

	// Map keys marshal in sorted order, so the wire bytes are stable.
	want := `{"reason":"user_cancelled","ride_id":"ride-1","type":"ride:cancelled"}`
	mock.ExpectPublish("ride:ride-1", []byte(want)).SetVal(1)
	mock.ExpectPublish(DashboardChannel, []byte(want)).SetVal(1)

	err := publisher.PublishRideEvent(context.Background(), "ride-1", "ride:cancelled", map[string]interface{}{
		"reason": "user_cancelled",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
