package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

// OfferRepository is a PostgreSQL implementation of repository.OfferRepository.
type OfferRepository struct {
	q Querier
}

// NewOfferRepository creates a new PostgreSQL offer repository.
func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{q: db}
}

// NewOfferRepositoryWithTx creates an offer repository using a transaction.
func NewOfferRepositoryWithTx(tx *sql.Tx) *OfferRepository {
	return &OfferRepository{q: tx}
}

const offerColumns = `id, ride_id, driver_id, status, expires_at, created_at`

// Create persists a new offer.
func (r *OfferRepository) Create(ctx context.Context, offer *domain.RideOffer) error {
	query := `
		INSERT INTO ride_offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		offer.ID,
		offer.RideID,
		offer.DriverID,
		offer.Status,
		offer.ExpiresAt,
		offer.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*domain.RideOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM ride_offers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves an offer by ID with a row lock.
func (r *OfferRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RideOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM ride_offers WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetPendingByRide retrieves the ride's pending offer, if any.
func (r *OfferRepository) GetPendingByRide(ctx context.Context, rideID string) (*domain.RideOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM ride_offers WHERE ride_id = $1 AND status = $2`
	return r.scanOne(r.q.QueryRowContext(ctx, query, rideID, domain.OfferStatusPending))
}

// GetPendingByRideAndDriver retrieves the pending offer for a ride and
// driver with a row lock.
func (r *OfferRepository) GetPendingByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM ride_offers WHERE ride_id = $1 AND driver_id = $2 AND status = $3 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, rideID, driverID, domain.OfferStatusPending))
}

// ExpirePendingByRideExcept expires every pending offer for the ride other
// than keepID, returning the driver IDs released.
func (r *OfferRepository) ExpirePendingByRideExcept(ctx context.Context, rideID, keepID string) ([]string, error) {
	query := `
		UPDATE ride_offers SET status = $1
		WHERE ride_id = $2 AND id <> $3 AND status = $4
		RETURNING driver_id
	`

	rows, err := r.q.QueryContext(ctx, query, domain.OfferStatusExpired, rideID, keepID, domain.OfferStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var driverIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		driverIDs = append(driverIDs, id)
	}
	return driverIDs, rows.Err()
}

// ListExpiredPending returns the IDs of pending offers whose deadline
// passed, oldest first, up to limit.
func (r *OfferRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	query := `
		SELECT id FROM ride_offers
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, domain.OfferStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListDriverIDsByRide returns every driver already offered the ride.
func (r *OfferRepository) ListDriverIDsByRide(ctx context.Context, rideID string) ([]string, error) {
	query := `SELECT driver_id FROM ride_offers WHERE ride_id = $1`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var driverIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		driverIDs = append(driverIDs, id)
	}
	return driverIDs, rows.Err()
}

// UpdateStatus transitions an offer's status.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	query := `UPDATE ride_offers SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *OfferRepository) scanOne(row *sql.Row) (*domain.RideOffer, error) {
	var offer domain.RideOffer
	err := row.Scan(
		&offer.ID,
		&offer.RideID,
		&offer.DriverID,
		&offer.Status,
		&offer.ExpiresAt,
		&offer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}
