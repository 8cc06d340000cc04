package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/domain"
	"rideflux/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for requesting a ride.
type CreateRideRequest struct {
	RiderID       string  `json:"rider_id"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
	PickupAddress string  `json:"pickup_address,omitempty"`
	DestLat       float64 `json:"dest_lat"`
	DestLng       float64 `json:"dest_lng"`
	DestAddress   string  `json:"dest_address,omitempty"`
	VehicleClass  string  `json:"vehicle_type"`
	PaymentMethod string  `json:"payment_method"` // cash, card, wallet
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID              string  `json:"id"`
	RiderID         string  `json:"rider_id"`
	Status          string  `json:"status"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	PickupAddress   string  `json:"pickup_address,omitempty"`
	DestLat         float64 `json:"dest_lat"`
	DestLng         float64 `json:"dest_lng"`
	DestAddress     string  `json:"dest_address,omitempty"`
	VehicleClass    string  `json:"vehicle_type"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	SurgeMultiplier string  `json:"surge_multiplier"`
	EstimatedFare   string  `json:"estimated_fare"`
	MatchedDriverID string  `json:"matched_driver_id,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

func rideToResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:              ride.ID,
		RiderID:         ride.RiderID,
		Status:          string(ride.Status),
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		PickupAddress:   ride.PickupAddress,
		DestLat:         ride.DestLat,
		DestLng:         ride.DestLng,
		DestAddress:     ride.DestAddress,
		VehicleClass:    string(ride.VehicleClass),
		PaymentMethod:   string(ride.PaymentMethod),
		SurgeMultiplier: ride.SurgeMultiplier.StringFixed(2),
		EstimatedFare:   ride.EstimatedFare.StringFixed(2),
		MatchedDriverID: ride.MatchedDriverID,
	}
	if !ride.CreatedAt.IsZero() {
		resp.CreatedAt = ride.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		RiderID:       req.RiderID,
		PickupLat:     req.PickupLat,
		PickupLng:     req.PickupLng,
		PickupAddress: req.PickupAddress,
		DestLat:       req.DestLat,
		DestLng:       req.DestLng,
		DestAddress:   req.DestAddress,
		VehicleClass:  domain.VehicleClass(req.VehicleClass),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}, c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rideToResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	rides, err := h.rideService.ListRides(c.Request.Context(), 50)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, rideToResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	ride, err := h.rideService.CancelRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideToResponse(ride))
}
