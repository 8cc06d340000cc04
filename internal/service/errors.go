package service

import "errors"

var (
	// ErrDriverUnavailable is returned when a driver cannot be claimed for
	// an offer, or no pending offer exists for a driver and ride.
	ErrDriverUnavailable = errors.New("driver unavailable")

	// ErrDuplicateRequest is returned when an idempotency key has already
	// been consumed.
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrTripNotCompleted is returned when charging a trip that has not
	// completed.
	ErrTripNotCompleted = errors.New("trip not completed")

	// ErrPaymentAlreadyExists is returned when the trip already has a
	// processing or succeeded payment.
	ErrPaymentAlreadyExists = errors.New("payment already exists for this trip")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidDriverStatus is returned when the driver status is unknown.
	ErrInvalidDriverStatus = errors.New("invalid driver status")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidVehicleClass is returned when the vehicle class is unknown.
	ErrInvalidVehicleClass = errors.New("invalid vehicle class")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// validCoordinates reports whether a lat/lng pair is within range.
func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
