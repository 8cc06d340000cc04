package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/domain"
	"rideflux/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for charging a trip.
type CreatePaymentRequest struct {
	TripID        string `json:"trip_id"`
	PaymentMethod string `json:"payment_method"` // cash, card, wallet
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID               string `json:"id"`
	TripID           string `json:"trip_id"`
	RiderID          string `json:"rider_id"`
	Amount           string `json:"amount"`
	PaymentMethod    string `json:"payment_method"`
	Status           string `json:"status"`
	PSPTransactionID string `json:"psp_transaction_id,omitempty"`
}

func paymentToResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               payment.ID,
		TripID:           payment.TripID,
		RiderID:          payment.RiderID,
		Amount:           payment.Amount.StringFixed(2),
		PaymentMethod:    string(payment.PaymentMethod),
		Status:           string(payment.Status),
		PSPTransactionID: payment.PSPTransactionID,
	}
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.ProcessPayment(c.Request.Context(), req.TripID, domain.PaymentMethod(req.PaymentMethod), c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, paymentToResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentToResponse(payment))
}
