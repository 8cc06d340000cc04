package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusStarted    TripStatus = "started"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusPaused     TripStatus = "paused"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// Trip represents an active or completed trip. Exactly one trip exists per
// ride. The fare breakdown is written once, when the trip completes.
type Trip struct {
	ID              string
	RideID          string
	DriverID        string
	RiderID         string
	Status          TripStatus
	StartedAt       time.Time
	CompletedAt     time.Time
	DistanceM       int64
	DurationS       int64
	BaseFare        decimal.Decimal
	DistanceFare    decimal.Decimal
	TimeFare        decimal.Decimal
	SurgeMultiplier decimal.Decimal
	TotalFare       decimal.Decimal
	CreatedAt       time.Time
}
