package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rideflux/internal/domain"
	"rideflux/internal/redis"
	"rideflux/internal/repository"
)

// DriverService owns driver registration, heartbeats, and availability.
type DriverService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	events        redis.EventPublisherInterface
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	events redis.EventPublisherInterface,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		events:        events,
	}
}

// RegisterDriverRequest contains the parameters for onboarding a driver.
type RegisterDriverRequest struct {
	Name         string
	Email        string
	Phone        string
	VehicleClass domain.VehicleClass
}

// Register onboards a new driver. Drivers start offline and enter the pool
// on their first heartbeat.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if !domain.ValidVehicleClass(req.VehicleClass) {
		return nil, ErrInvalidVehicleClass
	}

	driver := &domain.Driver{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		VehicleClass: req.VehicleClass,
		Status:       domain.DriverStatusOffline,
		Rating:       decimal.NewFromInt(5),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// GetDriver returns a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.driverRepo.GetByID(ctx, driverID)
}

// ListDrivers returns all drivers ordered by name.
func (s *DriverService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// UpdateLocation records a driver heartbeat. The position goes to both the
// Redis geo index and the driver row, and an offline driver comes back as
// available.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) (*domain.Driver, error) {
	if !validCoordinates(lat, lng) {
		return nil, ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if err := s.driverRepo.UpdateLocation(ctx, driverID, lat, lng); err != nil {
		return nil, err
	}
	driver.CurrentLat = lat
	driver.CurrentLng = lng

	if driver.Status == domain.DriverStatusOffline {
		if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusAvailable); err != nil {
			return nil, err
		}
		driver.Status = domain.DriverStatusAvailable
	}

	if err := s.locationStore.UpdateLocation(ctx, driverID, lat, lng, driver.VehicleClass); err != nil {
		log.Printf("driver: geo index update for driver %s: %v", driverID, err)
	}

	if err := s.events.PublishDriverEvent(ctx, driverID, "driver:location_update", map[string]interface{}{
		"lat":          lat,
		"lng":          lng,
		"vehicle_type": string(driver.VehicleClass),
		"status":       string(driver.Status),
	}); err != nil {
		log.Printf("driver: publish driver:location_update for driver %s: %v", driverID, err)
	}

	return driver, nil
}

// SetStatus changes a driver's status. Going offline also removes the
// driver from the geo index so matching stops seeing them immediately.
func (s *DriverService) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) (*domain.Driver, error) {
	switch status {
	case domain.DriverStatusOffline, domain.DriverStatusAvailable, domain.DriverStatusBusy, domain.DriverStatusOnTrip:
	default:
		return nil, ErrInvalidDriverStatus
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	oldStatus := driver.Status

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return nil, err
	}
	driver.Status = status

	if status == domain.DriverStatusOffline {
		if err := s.locationStore.RemoveDriver(ctx, driverID, driver.VehicleClass); err != nil {
			log.Printf("driver: geo index removal for driver %s: %v", driverID, err)
		}
	}

	if err := s.events.PublishDriverEvent(ctx, driverID, "driver:status_changed", map[string]interface{}{
		"old_status": string(oldStatus),
		"new_status": string(status),
	}); err != nil {
		log.Printf("driver: publish driver:status_changed for driver %s: %v", driverID, err)
	}

	return driver, nil
}
