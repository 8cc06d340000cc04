package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Payment represents a payment for a completed trip. At most one payment
// per trip may be in processing or succeeded.
type Payment struct {
	ID               string
	TripID           string
	RiderID          string
	Amount           decimal.Decimal
	PaymentMethod    PaymentMethod
	Status           PaymentStatus
	IdempotencyKey   string
	PSPTransactionID string
	CreatedAt        time.Time
}
