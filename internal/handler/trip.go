package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/domain"
	"rideflux/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// EndTripRequest is the HTTP request body for ending a trip.
type EndTripRequest struct {
	DistanceM int64 `json:"distance_m"`
	DurationS int64 `json:"duration_s"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID              string `json:"id"`
	RideID          string `json:"ride_id"`
	DriverID        string `json:"driver_id"`
	RiderID         string `json:"rider_id"`
	Status          string `json:"status"`
	StartedAt       string `json:"started_at,omitempty"`
	CompletedAt     string `json:"completed_at,omitempty"`
	DistanceM       int64  `json:"distance_m"`
	DurationS       int64  `json:"duration_s"`
	BaseFare        string `json:"base_fare"`
	DistanceFare    string `json:"distance_fare"`
	TimeFare        string `json:"time_fare"`
	SurgeMultiplier string `json:"surge_multiplier"`
	TotalFare       string `json:"total_fare"`
}

func tripToResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:              trip.ID,
		RideID:          trip.RideID,
		DriverID:        trip.DriverID,
		RiderID:         trip.RiderID,
		Status:          string(trip.Status),
		DistanceM:       trip.DistanceM,
		DurationS:       trip.DurationS,
		BaseFare:        trip.BaseFare.StringFixed(2),
		DistanceFare:    trip.DistanceFare.StringFixed(2),
		TimeFare:        trip.TimeFare.StringFixed(2),
		SurgeMultiplier: trip.SurgeMultiplier.StringFixed(2),
		TotalFare:       trip.TotalFare.StringFixed(2),
	}
	if !trip.StartedAt.IsZero() {
		resp.StartedAt = trip.StartedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if !trip.CompletedAt.IsZero() {
		resp.CompletedAt = trip.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// StartTrip handles POST /v1/trips/:id/start, where :id is the ride ID.
func (h *TripHandler) StartTrip(c *gin.Context) {
	trip, err := h.tripService.StartTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripToResponse(trip))
}

// EndTrip handles POST /v1/trips/:id/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	var req EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.DistanceM < 0 || req.DurationS < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "distance and duration must be non-negative"})
		return
	}

	trip, err := h.tripService.EndTrip(c.Request.Context(), c.Param("id"), req.DistanceM, req.DurationS)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripToResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripToResponse(trip))
}
