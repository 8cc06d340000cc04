package repository

import (
	"context"

	"rideflux/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetAll retrieves all drivers ordered by name.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// LockAvailable claims a driver's row if they are currently available.
	// Locked rows held by concurrent claimants are skipped rather than
	// waited on, so a miss returns ErrNotFound. Must be called inside a
	// transaction.
	LockAvailable(ctx context.Context, id string) (*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateLocation persists the driver's last reported position.
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
}
