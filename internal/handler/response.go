package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/fsm"
	"rideflux/internal/repository"
	"rideflux/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var invalidTransition *fsm.InvalidTransitionError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidDriverStatus),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidVehicleClass),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	// Conflict errors
	case errors.As(err, &invalidTransition),
		errors.Is(err, service.ErrDriverUnavailable),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Payment errors
	case errors.Is(err, service.ErrTripNotCompleted),
		errors.Is(err, service.ErrPaymentAlreadyExists):
		return http.StatusPaymentRequired

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
