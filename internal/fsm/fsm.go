package fsm

import (
	"fmt"

	"rideflux/internal/domain"
)

// InvalidTransitionError reports a state change not allowed by the
// transition tables below.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

var rideTransitions = map[domain.RideStatus][]domain.RideStatus{
	domain.RideStatusPending:       {domain.RideStatusMatching, domain.RideStatusCancelled},
	domain.RideStatusMatching:      {domain.RideStatusOffered, domain.RideStatusCancelled},
	domain.RideStatusOffered:       {domain.RideStatusAccepted, domain.RideStatusMatching, domain.RideStatusNoDrivers, domain.RideStatusCancelled},
	domain.RideStatusAccepted:      {domain.RideStatusDriverEnRoute, domain.RideStatusCancelled},
	domain.RideStatusDriverEnRoute: {domain.RideStatusArrived, domain.RideStatusCancelled},
	domain.RideStatusArrived:       {domain.RideStatusInTrip, domain.RideStatusCancelled},
	domain.RideStatusInTrip:        {domain.RideStatusCompleted},
}

var offerTransitions = map[domain.OfferStatus][]domain.OfferStatus{
	domain.OfferStatusPending: {domain.OfferStatusAccepted, domain.OfferStatusDeclined, domain.OfferStatusExpired},
}

var tripTransitions = map[domain.TripStatus][]domain.TripStatus{
	domain.TripStatusStarted:    {domain.TripStatusInProgress, domain.TripStatusCancelled},
	domain.TripStatusInProgress: {domain.TripStatusCompleted, domain.TripStatusPaused, domain.TripStatusCancelled},
	domain.TripStatusPaused:     {domain.TripStatusInProgress, domain.TripStatusCancelled},
}

// CheckRide validates a ride status transition.
func CheckRide(from, to domain.RideStatus) error {
	for _, allowed := range rideTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidTransitionError{Entity: "ride", From: string(from), To: string(to)}
}

// CheckOffer validates an offer status transition.
func CheckOffer(from, to domain.OfferStatus) error {
	for _, allowed := range offerTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidTransitionError{Entity: "offer", From: string(from), To: string(to)}
}

// CheckTrip validates a trip status transition.
func CheckTrip(from, to domain.TripStatus) error {
	for _, allowed := range tripTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidTransitionError{Entity: "trip", From: string(from), To: string(to)}
}

// RideTerminal reports whether a ride status admits no further transitions.
func RideTerminal(s domain.RideStatus) bool {
	return len(rideTransitions[s]) == 0
}
