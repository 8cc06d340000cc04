package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideflux/internal/domain"
	"rideflux/internal/redis"
	"rideflux/internal/repository"
	"rideflux/internal/repository/postgres"
)

const paymentsEndpoint = "payments"

// PaymentService charges completed trips. Idempotency keys are checked in
// Redis first, then the durable Postgres table, so replays survive a cache
// flush.
type PaymentService struct {
	db          *sql.DB
	paymentRepo repository.PaymentRepository
	tripRepo    repository.TripRepository
	idempRepo   repository.IdempotencyRepository
	idempStore  redis.IdempotencyStoreInterface
	events      redis.EventPublisherInterface
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	db *sql.DB,
	paymentRepo repository.PaymentRepository,
	tripRepo repository.TripRepository,
	idempRepo repository.IdempotencyRepository,
	idempStore redis.IdempotencyStoreInterface,
	events redis.EventPublisherInterface,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		tripRepo:    tripRepo,
		idempRepo:   idempRepo,
		idempStore:  idempStore,
		events:      events,
	}
}

// pspResult is the response of the payment service provider.
type pspResult struct {
	TransactionID string
	Status        domain.PaymentStatus
}

// ProcessPayment charges a completed trip. A previously consumed
// idempotency key returns ErrDuplicateRequest.
func (s *PaymentService) ProcessPayment(ctx context.Context, tripID string, method domain.PaymentMethod, idempotencyKey string) (payment *domain.Payment, err error) {
	switch method {
	case domain.PaymentMethodCash, domain.PaymentMethodCard, domain.PaymentMethodWallet:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	if idempotencyKey != "" {
		seen, cErr := s.keyConsumed(ctx, idempotencyKey)
		if cErr != nil {
			return nil, cErr
		}
		if seen {
			return nil, ErrDuplicateRequest
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txPaymentRepo := postgres.NewPaymentRepositoryWithTx(tx)
	txIdempRepo := postgres.NewIdempotencyRepositoryWithTx(tx)

	trip, err := txTripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusCompleted {
		return nil, ErrTripNotCompleted
	}

	active, err := txPaymentRepo.GetActiveByTrip(ctx, tripID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if active != nil {
		err = ErrPaymentAlreadyExists
		return nil, err
	}
	err = nil

	now := time.Now().UTC()
	payment = &domain.Payment{
		ID:             uuid.NewString(),
		TripID:         tripID,
		RiderID:        trip.RiderID,
		Amount:         trip.TotalFare,
		PaymentMethod:  method,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
	}

	switch method {
	case domain.PaymentMethodCash:
		payment.Status = domain.PaymentStatusSucceeded
	case domain.PaymentMethodCard, domain.PaymentMethodWallet:
		payment.Status = domain.PaymentStatusProcessing
		result := s.chargePSP(payment)
		payment.PSPTransactionID = result.TransactionID
		payment.Status = result.Status
	}

	if err = txPaymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	var responseBody []byte
	if idempotencyKey != "" {
		responseBody, err = json.Marshal(map[string]string{
			"payment_id": payment.ID,
			"status":     string(payment.Status),
		})
		if err != nil {
			return nil, err
		}
		record := &domain.IdempotencyRecord{
			Key:          idempotencyKey,
			Endpoint:     paymentsEndpoint,
			ResponseCode: 201,
			ResponseBody: responseBody,
			ExpiresAt:    now.Add(domain.IdempotencyRecordTTL),
			CreatedAt:    now,
		}
		if err = txIdempRepo.Save(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				err = ErrDuplicateRequest
			}
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if cErr := s.idempStore.Set(ctx, idempotencyKey, paymentsEndpoint, &redis.CachedResponse{
			StatusCode: 201,
			Body:       responseBody,
		}); cErr != nil {
			log.Printf("payment: idempotency cache write for key %s: %v", idempotencyKey, cErr)
		}
	}

	if pubErr := s.events.PublishRideEvent(ctx, trip.RideID, "ride:payment", map[string]interface{}{
		"payment_id":     payment.ID,
		"trip_id":        tripID,
		"amount":         payment.Amount.StringFixed(2),
		"payment_method": string(method),
		"status":         string(payment.Status),
	}); pubErr != nil {
		log.Printf("payment: publish ride:payment for trip %s: %v", tripID, pubErr)
	}

	return payment, nil
}

// GetPayment returns a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// keyConsumed reports whether an idempotency key has already produced a
// payment response.
func (s *PaymentService) keyConsumed(ctx context.Context, key string) (bool, error) {
	cached, err := s.idempStore.Get(ctx, key, paymentsEndpoint)
	if err != nil {
		log.Printf("payment: idempotency cache read for key %s: %v", key, err)
	} else if cached != nil {
		return true, nil
	}

	record, err := s.idempRepo.Get(ctx, key, paymentsEndpoint)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return record != nil, nil
}

// chargePSP simulates the payment service provider call. It always
// approves.
func (s *PaymentService) chargePSP(payment *domain.Payment) pspResult {
	txnID := fmt.Sprintf("psp_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return pspResult{TransactionID: txnID, Status: domain.PaymentStatusSucceeded}
}
