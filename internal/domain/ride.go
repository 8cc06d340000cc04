package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RideStatus represents the current status of a ride request.
type RideStatus string

const (
	RideStatusPending       RideStatus = "pending"
	RideStatusMatching      RideStatus = "matching"
	RideStatusOffered       RideStatus = "offered"
	RideStatusAccepted      RideStatus = "accepted"
	RideStatusDriverEnRoute RideStatus = "driver_en_route"
	RideStatusArrived       RideStatus = "arrived"
	RideStatusInTrip        RideStatus = "in_trip"
	RideStatusCompleted     RideStatus = "completed"
	RideStatusCancelled     RideStatus = "cancelled"
	RideStatusNoDrivers     RideStatus = "no_drivers"
)

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// DefaultMaxOffers is the number of offers a ride may consume before it
// terminates in no_drivers.
const DefaultMaxOffers = 3

// Ride represents a ride request. The surge multiplier is frozen at
// creation time; MatchedDriverID is set when a driver accepts.
type Ride struct {
	ID              string
	RiderID         string
	Status          RideStatus
	PickupLat       float64
	PickupLng       float64
	PickupAddress   string
	DestLat         float64
	DestLng         float64
	DestAddress     string
	VehicleClass    VehicleClass
	PaymentMethod   PaymentMethod
	SurgeMultiplier decimal.Decimal
	EstimatedFare   decimal.Decimal
	MatchedDriverID string
	IdempotencyKey  string
	OffersMade      int
	MaxOffers       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OfferStatus represents the current status of a ride offer.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
	OfferStatusExpired  OfferStatus = "expired"
)

// RideOffer is a proposal to one driver for one ride, with a hard deadline.
// (ride_id, driver_id) is unique.
type RideOffer struct {
	ID        string
	RideID    string
	DriverID  string
	Status    OfferStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}
