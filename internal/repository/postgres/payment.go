package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of
// repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, trip_id, rider_id, amount, payment_method, status, idempotency_key, psp_transaction_id, created_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TripID,
		payment.RiderID,
		payment.Amount,
		payment.PaymentMethod,
		payment.Status,
		nullString(payment.IdempotencyKey),
		nullString(payment.PSPTransactionID),
		payment.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetActiveByTrip retrieves the trip's processing or succeeded payment.
func (r *PaymentRepository) GetActiveByTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE trip_id = $1 AND status IN ($2, $3)`
	return r.scanOne(r.q.QueryRowContext(ctx, query, tripID, domain.PaymentStatusProcessing, domain.PaymentStatusSucceeded))
}

// GetByIdempotencyKey retrieves the payment created under a key, if any.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, key))
}

// Update updates an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, psp_transaction_id = $2
		WHERE id = $3
	`

	result, err := r.q.ExecContext(ctx, query,
		payment.Status,
		nullString(payment.PSPTransactionID),
		payment.ID,
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

func (r *PaymentRepository) scanOne(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	var idempotencyKey sql.NullString
	var pspTransactionID sql.NullString

	err := row.Scan(
		&payment.ID,
		&payment.TripID,
		&payment.RiderID,
		&payment.Amount,
		&payment.PaymentMethod,
		&payment.Status,
		&idempotencyKey,
		&pspTransactionID,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if idempotencyKey.Valid {
		payment.IdempotencyKey = idempotencyKey.String
	}
	if pspTransactionID.Valid {
		payment.PSPTransactionID = pspTransactionID.String
	}
	return &payment, nil
}
