package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, ride_id, driver_id, rider_id, status, started_at, completed_at, distance_m, duration_s, base_fare, distance_fare, time_fare, surge_multiplier, total_fare, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RideID,
		trip.DriverID,
		trip.RiderID,
		trip.Status,
		trip.StartedAt,
		nullTime(trip.CompletedAt),
		trip.DistanceM,
		trip.DurationS,
		trip.BaseFare,
		trip.DistanceFare,
		trip.TimeFare,
		trip.SurgeMultiplier,
		trip.TotalFare,
		trip.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideID retrieves the trip for a ride.
func (r *TripRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE ride_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, rideID))
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, completed_at = $2, distance_m = $3, duration_s = $4, base_fare = $5, distance_fare = $6, time_fare = $7, surge_multiplier = $8, total_fare = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.Status,
		nullTime(trip.CompletedAt),
		trip.DistanceM,
		trip.DurationS,
		trip.BaseFare,
		trip.DistanceFare,
		trip.TimeFare,
		trip.SurgeMultiplier,
		trip.TotalFare,
		trip.ID,
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

func (r *TripRepository) scanOne(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var completedAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.RideID,
		&trip.DriverID,
		&trip.RiderID,
		&trip.Status,
		&trip.StartedAt,
		&completedAt,
		&trip.DistanceM,
		&trip.DurationS,
		&trip.BaseFare,
		&trip.DistanceFare,
		&trip.TimeFare,
		&trip.SurgeMultiplier,
		&trip.TotalFare,
		&trip.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	return &trip, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
