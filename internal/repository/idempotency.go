package repository

import (
	"context"

	"rideflux/internal/domain"
)

// IdempotencyRepository defines the durable tier of the idempotency
// substrate.
type IdempotencyRepository interface {
	// Get retrieves the record for a key and endpoint.
	Get(ctx context.Context, key, endpoint string) (*domain.IdempotencyRecord, error)

	// Save persists a record. A concurrent insert of the same key and
	// endpoint returns ErrDuplicate.
	Save(ctx context.Context, record *domain.IdempotencyRecord) error

	// DeleteExpired removes records past their expiry, returning the
	// number removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
