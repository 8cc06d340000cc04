package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

// IdempotencyRepository is a PostgreSQL implementation of
// repository.IdempotencyRepository.
type IdempotencyRepository struct {
	q Querier
}

// NewIdempotencyRepository creates a new PostgreSQL idempotency repository.
func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{q: db}
}

// NewIdempotencyRepositoryWithTx creates a repository bound to a transaction.
func NewIdempotencyRepositoryWithTx(tx *sql.Tx) *IdempotencyRepository {
	return &IdempotencyRepository{q: tx}
}

// Get retrieves the record for a key and endpoint.
func (r *IdempotencyRepository) Get(ctx context.Context, key, endpoint string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT id, key, endpoint, response_code, response_body, expires_at, created_at
		FROM idempotency_keys
		WHERE key = $1 AND endpoint = $2
	`

	var record domain.IdempotencyRecord
	err := r.q.QueryRowContext(ctx, query, key, endpoint).Scan(
		&record.ID,
		&record.Key,
		&record.Endpoint,
		&record.ResponseCode,
		&record.ResponseBody,
		&record.ExpiresAt,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &record, nil
}

// Save persists a record. (key, endpoint) is unique, so the loser of a
// concurrent insert gets ErrDuplicate.
func (r *IdempotencyRepository) Save(ctx context.Context, record *domain.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (key, endpoint, response_code, response_body, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		record.Key,
		record.Endpoint,
		record.ResponseCode,
		record.ResponseBody,
		record.ExpiresAt,
		record.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// DeleteExpired removes records past their expiry.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
