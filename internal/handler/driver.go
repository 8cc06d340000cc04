package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/domain"
	"rideflux/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
	rideService   *service.RideService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, rideService *service.RideService) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		rideService:   rideService,
	}
}

// RegisterDriverRequest is the HTTP request body for onboarding a driver.
type RegisterDriverRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	VehicleClass string `json:"vehicle_type"`
}

// LocationUpdateRequest is the HTTP request body for a driver heartbeat.
type LocationUpdateRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AcceptOfferRequest is the HTTP request body for answering an offer.
type AcceptOfferRequest struct {
	RideID string `json:"ride_id"`
	Accept bool   `json:"accept"`
}

// SetStatusRequest is the HTTP request body for changing driver status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	VehicleClass string  `json:"vehicle_type"`
	Status       string  `json:"status"`
	CurrentLat   float64 `json:"current_lat"`
	CurrentLng   float64 `json:"current_lng"`
	Rating       string  `json:"rating"`
}

func driverToResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:           driver.ID,
		Name:         driver.Name,
		Email:        driver.Email,
		Phone:        driver.Phone,
		VehicleClass: string(driver.VehicleClass),
		Status:       string(driver.Status),
		CurrentLat:   driver.CurrentLat,
		CurrentLng:   driver.CurrentLng,
		Rating:       driver.Rating.StringFixed(1),
	}
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		VehicleClass: domain.VehicleClass(req.VehicleClass),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverToResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverToResponse(driver))
}

// ListDrivers handles GET /v1/drivers
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.driverService.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, driverToResponse(d))
	}
	respondJSON(c, http.StatusOK, response)
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverToResponse(driver))
}

// AcceptOffer handles POST /v1/drivers/:id/accept
func (h *DriverHandler) AcceptOffer(c *gin.Context) {
	var req AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.AcceptOffer(c.Request.Context(), c.Param("id"), req.RideID, req.Accept)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideToResponse(ride))
}

// SetStatus handles POST /v1/drivers/:id/status
func (h *DriverHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.SetStatus(c.Request.Context(), c.Param("id"), domain.DriverStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverToResponse(driver))
}
