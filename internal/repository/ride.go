package repository

import (
	"context"
	"time"

	"rideflux/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride by ID with a row lock. Must be
	// called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIdempotencyKey retrieves the ride created under a key, if any.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Ride, error)

	// List retrieves rides, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error
}

// OfferRepository defines the persistence operations for ride offers.
type OfferRepository interface {
	// Create persists a new offer.
	Create(ctx context.Context, offer *domain.RideOffer) error

	// GetByID retrieves an offer by ID.
	GetByID(ctx context.Context, id string) (*domain.RideOffer, error)

	// GetByIDForUpdate retrieves an offer by ID with a row lock. Must be
	// called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.RideOffer, error)

	// GetPendingByRide retrieves the ride's pending offer, if any.
	GetPendingByRide(ctx context.Context, rideID string) (*domain.RideOffer, error)

	// GetPendingByRideAndDriver retrieves the pending offer for a ride and
	// driver with a row lock. Must be called inside a transaction.
	GetPendingByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error)

	// ExpirePendingByRideExcept expires every pending offer for the ride
	// other than keepID, returning the driver IDs released.
	ExpirePendingByRideExcept(ctx context.Context, rideID, keepID string) ([]string, error)

	// ListDriverIDsByRide returns every driver already offered the ride,
	// in any offer state.
	ListDriverIDsByRide(ctx context.Context, rideID string) ([]string, error)

	// ListExpiredPending returns the IDs of pending offers whose
	// expires_at is at or before now, oldest first, up to limit.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error)

	// UpdateStatus transitions an offer's status.
	UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error
}
