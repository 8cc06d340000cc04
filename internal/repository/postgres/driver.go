package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''), vehicle_class, status, current_lat, current_lng, rating, created_at`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, email, phone, vehicle_class, status, current_lat, current_lng, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Email,
		driver.Phone,
		driver.VehicleClass,
		driver.Status,
		driver.CurrentLat,
		driver.CurrentLng,
		driver.Rating,
		driver.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetAll retrieves all drivers ordered by name.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Email,
			&driver.Phone,
			&driver.VehicleClass,
			&driver.Status,
			&driver.CurrentLat,
			&driver.CurrentLng,
			&driver.Rating,
			&driver.CreatedAt,
		); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// LockAvailable claims a driver's row if they are currently available.
// SKIP LOCKED makes concurrent claimants miss instead of queueing, so the
// loser of a race sees ErrNotFound.
func (r *DriverRepository) LockAvailable(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 AND status = $2 FOR UPDATE SKIP LOCKED`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id, domain.DriverStatusAvailable))
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE id = $2`

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

// UpdateLocation persists the driver's last reported position.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE drivers SET current_lat = $1, current_lng = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, lat, lng, id)
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

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.Phone,
		&driver.VehicleClass,
		&driver.Status,
		&driver.CurrentLat,
		&driver.CurrentLng,
		&driver.Rating,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}
