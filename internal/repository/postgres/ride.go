package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, rider_id, status, pickup_lat, pickup_lng, pickup_address, dest_lat, dest_lng, dest_address, vehicle_class, payment_method, surge_multiplier, estimated_fare, matched_driver_id, idempotency_key, offers_made, max_offers, created_at, updated_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		ride.Status,
		ride.PickupLat,
		ride.PickupLng,
		ride.PickupAddress,
		ride.DestLat,
		ride.DestLng,
		ride.DestAddress,
		ride.VehicleClass,
		ride.PaymentMethod,
		ride.SurgeMultiplier,
		ride.EstimatedFare,
		nullString(ride.MatchedDriverID),
		nullString(ride.IdempotencyKey),
		ride.OffersMade,
		ride.MaxOffers,
		ride.CreatedAt,
		ride.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride by ID with a row lock.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIdempotencyKey retrieves the ride created under a key, if any.
func (r *RideRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE idempotency_key = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, key))
}

// List retrieves rides, newest first, up to limit.
func (r *RideRepository) List(ctx context.Context, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT $1`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET status = $1, surge_multiplier = $2, estimated_fare = $3, matched_driver_id = $4, offers_made = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Status,
		ride.SurgeMultiplier,
		ride.EstimatedFare,
		nullString(ride.MatchedDriverID),
		ride.OffersMade,
		ride.UpdatedAt,
		ride.ID,
	)
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

type scanner interface {
	Scan(dest ...any) error
}

func (r *RideRepository) scanOne(row scanner) (*domain.Ride, error) {
	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

func scanRide(row scanner) (*domain.Ride, error) {
	var ride domain.Ride
	var matchedDriverID sql.NullString
	var idempotencyKey sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&ride.Status,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.PickupAddress,
		&ride.DestLat,
		&ride.DestLng,
		&ride.DestAddress,
		&ride.VehicleClass,
		&ride.PaymentMethod,
		&ride.SurgeMultiplier,
		&ride.EstimatedFare,
		&matchedDriverID,
		&idempotencyKey,
		&ride.OffersMade,
		&ride.MaxOffers,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if matchedDriverID.Valid {
		ride.MatchedDriverID = matchedDriverID.String
	}
	if idempotencyKey.Valid {
		ride.IdempotencyKey = idempotencyKey.String
	}
	return &ride, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
