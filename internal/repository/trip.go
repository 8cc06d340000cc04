package repository

import (
	"context"

	"rideflux/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByRideID retrieves the trip for a ride.
	GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error
}

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetActiveByTrip retrieves the trip's processing or succeeded
	// payment, if any.
	GetActiveByTrip(ctx context.Context, tripID string) (*domain.Payment, error)

	// GetByIdempotencyKey retrieves the payment created under a key, if any.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)

	// Update updates an existing payment.
	Update(ctx context.Context, payment *domain.Payment) error
}
