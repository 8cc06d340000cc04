package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// DashboardChannel receives a mirror of every published event.
const DashboardChannel = "dashboard"

// Event is a domain event published over Redis pub/sub.
type Event struct {
	Type     string
	RideID   string
	DriverID string
	Data     map[string]interface{}
}

// MarshalJSON flattens Data into the top-level object, so subscribers see
// {type, ride_id?|driver_id?, ...fields}. Type and the entity id win over
// colliding Data keys.
func (e Event) MarshalJSON() ([]byte, error) {
	payload := make(map[string]interface{}, len(e.Data)+3)
	for k, v := range e.Data {
		payload[k] = v
	}
	payload["type"] = e.Type
	if e.RideID != "" {
		payload["ride_id"] = e.RideID
	}
	if e.DriverID != "" {
		payload["driver_id"] = e.DriverID
	}
	return json.Marshal(payload)
}

// EventPublisher broadcasts events on per-entity channels with a dashboard
// mirror.
type EventPublisher struct {
	client *redis.Client
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

// PublishRideEvent publishes to ride:{id} and the dashboard channel.
func (p *EventPublisher) PublishRideEvent(ctx context.Context, rideID, eventType string, data map[string]interface{}) error {
	return p.publish(ctx, "ride:"+rideID, Event{
		Type:   eventType,
		RideID: rideID,
		Data:   data,
	})
}

// PublishDriverEvent publishes to driver:{id} and the dashboard channel.
func (p *EventPublisher) PublishDriverEvent(ctx context.Context, driverID, eventType string, data map[string]interface{}) error {
	return p.publish(ctx, "driver:"+driverID, Event{
		Type:     eventType,
		DriverID: driverID,
		Data:     data,
	})
}

func (p *EventPublisher) publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, channel, payload)
	pipe.Publish(ctx, DashboardChannel, payload)
	_, err = pipe.Exec(ctx)
	return err
}
