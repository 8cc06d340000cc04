package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"rideflux/internal/domain"
	"rideflux/internal/fare"
	"rideflux/internal/fsm"
	"rideflux/internal/redis"
	"rideflux/internal/repository"
	"rideflux/internal/repository/postgres"
)

// TripService owns the on-road half of the ride lifecycle, from pickup to
// the metered fare.
type TripService struct {
	db        *sql.DB
	tripRepo  repository.TripRepository
	rideRepo  repository.RideRepository
	rideCache redis.RideCacheInterface
	events    redis.EventPublisherInterface
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	rideRepo repository.RideRepository,
	rideCache redis.RideCacheInterface,
	events redis.EventPublisherInterface,
) *TripService {
	return &TripService{
		db:        db,
		tripRepo:  tripRepo,
		rideRepo:  rideRepo,
		rideCache: rideCache,
		events:    events,
	}
}

// StartTrip begins the trip for an accepted ride. The ride may jump from
// accepted or driver_en_route straight to in_trip; drivers often skip the
// intermediate status pings.
func (s *TripService) StartTrip(ctx context.Context, rideID string) (trip *domain.Trip, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRideRepo := postgres.NewRideRepositoryWithTx(tx)
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)

	ride, err := txRideRepo.GetByIDForUpdate(ctx, rideID)
	if err != nil {
		return nil, err
	}

	switch ride.Status {
	case domain.RideStatusAccepted, domain.RideStatusDriverEnRoute, domain.RideStatusArrived:
	default:
		return nil, &fsm.InvalidTransitionError{Entity: "ride", From: string(ride.Status), To: string(domain.RideStatusInTrip)}
	}

	now := time.Now().UTC()

	ride.Status = domain.RideStatusInTrip
	ride.UpdatedAt = now
	if err = txRideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	trip = &domain.Trip{
		ID:              uuid.NewString(),
		RideID:          rideID,
		DriverID:        ride.MatchedDriverID,
		RiderID:         ride.RiderID,
		Status:          domain.TripStatusInProgress,
		StartedAt:       now,
		SurgeMultiplier: ride.SurgeMultiplier,
		CreatedAt:       now,
	}
	if err = txTripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidateRide(ctx, rideID)

	if pubErr := s.events.PublishRideEvent(ctx, rideID, "ride:started", map[string]interface{}{
		"trip_id": trip.ID,
	}); pubErr != nil {
		log.Printf("trip: publish ride:started for ride %s: %v", rideID, pubErr)
	}

	return trip, nil
}

// EndTrip completes a trip with the measured distance and duration,
// computes the final fare against the surge frozen at request time, and
// releases the driver.
func (s *TripService) EndTrip(ctx context.Context, tripID string, distanceM, durationS int64) (trip *domain.Trip, err error) {
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
	txRideRepo := postgres.NewRideRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	trip, err = txTripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	switch trip.Status {
	case domain.TripStatusStarted, domain.TripStatusInProgress, domain.TripStatusPaused:
	default:
		return nil, &fsm.InvalidTransitionError{Entity: "trip", From: string(trip.Status), To: string(domain.TripStatusCompleted)}
	}

	vehicle := domain.VehicleMini
	ride, rErr := txRideRepo.GetByID(ctx, trip.RideID)
	if rErr != nil && !errors.Is(rErr, repository.ErrNotFound) {
		err = rErr
		return nil, err
	}
	if ride != nil {
		vehicle = ride.VehicleClass
	}

	breakdown := fare.ComputeMeasured(vehicle, distanceM, durationS, trip.SurgeMultiplier)

	now := time.Now().UTC()
	trip.Status = domain.TripStatusCompleted
	trip.CompletedAt = now
	trip.DistanceM = distanceM
	trip.DurationS = durationS
	trip.BaseFare = breakdown.BaseFare
	trip.DistanceFare = breakdown.DistanceFare
	trip.TimeFare = breakdown.TimeFare
	trip.TotalFare = breakdown.TotalFare
	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if ride != nil {
		ride.Status = domain.RideStatusCompleted
		ride.UpdatedAt = now
		if err = txRideRepo.Update(ctx, ride); err != nil {
			return nil, err
		}
	}

	if trip.DriverID != "" {
		if err = txDriverRepo.UpdateStatus(ctx, trip.DriverID, domain.DriverStatusAvailable); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			err = nil
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidateRide(ctx, trip.RideID)

	if pubErr := s.events.PublishRideEvent(ctx, trip.RideID, "ride:completed", map[string]interface{}{
		"trip_id":          trip.ID,
		"distance_m":       distanceM,
		"duration_s":       durationS,
		"base_fare":        trip.BaseFare.StringFixed(2),
		"distance_fare":    trip.DistanceFare.StringFixed(2),
		"time_fare":        trip.TimeFare.StringFixed(2),
		"surge_multiplier": trip.SurgeMultiplier.StringFixed(2),
		"total_fare":       trip.TotalFare.StringFixed(2),
	}); pubErr != nil {
		log.Printf("trip: publish ride:completed for trip %s: %v", trip.ID, pubErr)
	}

	return trip, nil
}

// GetTrip returns a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	return s.tripRepo.GetByID(ctx, tripID)
}

// GetTripByRide returns the trip created for a ride.
func (s *TripService) GetTripByRide(ctx context.Context, rideID string) (*domain.Trip, error) {
	return s.tripRepo.GetByRideID(ctx, rideID)
}

func (s *TripService) invalidateRide(ctx context.Context, rideID string) {
	if err := s.rideCache.Invalidate(ctx, rideID); err != nil {
		log.Printf("trip: cache invalidate for ride %s: %v", rideID, err)
	}
}
