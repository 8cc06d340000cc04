package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rideflux/internal/domain"
	"rideflux/internal/fare"
	"rideflux/internal/fsm"
	"rideflux/internal/geo"
	"rideflux/internal/redis"
	"rideflux/internal/repository"
	"rideflux/internal/repository/postgres"
)

// RideService owns the ride lifecycle from request to terminal state.
type RideService struct {
	db        *sql.DB
	rideRepo  repository.RideRepository
	offerRepo repository.OfferRepository
	rideCache redis.RideCacheInterface
	events    redis.EventPublisherInterface
	surge     *SurgeService
	matching  *MatchingService
}

// NewRideService creates a new RideService.
func NewRideService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	offerRepo repository.OfferRepository,
	rideCache redis.RideCacheInterface,
	events redis.EventPublisherInterface,
	surge *SurgeService,
	matching *MatchingService,
) *RideService {
	return &RideService{
		db:        db,
		rideRepo:  rideRepo,
		offerRepo: offerRepo,
		rideCache: rideCache,
		events:    events,
		surge:     surge,
		matching:  matching,
	}
}

// CreateRideRequest contains the parameters for requesting a ride.
type CreateRideRequest struct {
	RiderID       string
	PickupLat     float64
	PickupLng     float64
	PickupAddress string
	DestLat       float64
	DestLng       float64
	DestAddress   string
	VehicleClass  domain.VehicleClass
	PaymentMethod domain.PaymentMethod
}

func (r CreateRideRequest) validate() error {
	if r.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !validCoordinates(r.PickupLat, r.PickupLng) || !validCoordinates(r.DestLat, r.DestLng) {
		return ErrInvalidLocation
	}
	if !domain.ValidVehicleClass(r.VehicleClass) {
		return ErrInvalidVehicleClass
	}
	switch r.PaymentMethod {
	case domain.PaymentMethodCash, domain.PaymentMethodCard, domain.PaymentMethodWallet:
	default:
		return ErrInvalidPaymentMethod
	}
	return nil
}

// CreateRide records demand, freezes the surge multiplier, quotes a fare,
// persists the ride in matching, and runs one matching cycle inline.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest, idempotencyKey string) (*domain.Ride, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	s.surge.RecordDemand(ctx, req.PickupLat, req.PickupLng)
	surge := s.surge.GetMultiplier(ctx, req.PickupLat, req.PickupLng, req.VehicleClass)
	surgeDec := decimal.NewFromFloat(surge).Round(2)

	distanceKm := geo.HaversineKm(req.PickupLat, req.PickupLng, req.DestLat, req.DestLng)
	estimate := fare.Estimate(req.VehicleClass, distanceKm, surgeDec)

	maxOffers := s.matching.cfg.MaxOffersPerRide
	if maxOffers <= 0 {
		maxOffers = domain.DefaultMaxOffers
	}

	now := time.Now().UTC()
	ride := &domain.Ride{
		ID:              uuid.NewString(),
		RiderID:         req.RiderID,
		Status:          domain.RideStatusMatching,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		PickupAddress:   req.PickupAddress,
		DestLat:         req.DestLat,
		DestLng:         req.DestLng,
		DestAddress:     req.DestAddress,
		VehicleClass:    req.VehicleClass,
		PaymentMethod:   req.PaymentMethod,
		SurgeMultiplier: surgeDec,
		EstimatedFare:   estimate,
		IdempotencyKey:  idempotencyKey,
		MaxOffers:       maxOffers,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.cacheRide(ctx, ride)

	if err := s.events.PublishRideEvent(ctx, ride.ID, "ride:requested", map[string]interface{}{
		"rider_id":         ride.RiderID,
		"pickup_lat":       ride.PickupLat,
		"pickup_lng":       ride.PickupLng,
		"dest_lat":         ride.DestLat,
		"dest_lng":         ride.DestLng,
		"vehicle_type":     string(ride.VehicleClass),
		"surge_multiplier": ride.SurgeMultiplier.StringFixed(2),
		"estimated_fare":   ride.EstimatedFare.StringFixed(2),
	}); err != nil {
		log.Printf("ride: publish ride:requested for ride %s: %v", ride.ID, err)
	}

	if _, err := s.matching.FindAndOffer(ctx, ride.ID); err != nil {
		log.Printf("ride: initial matching cycle for ride %s: %v", ride.ID, err)
	}

	return s.rideRepo.GetByID(ctx, ride.ID)
}

// GetRide returns a ride, serving the cached snapshot when fresh.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if cached, err := s.rideCache.Get(ctx, rideID); err == nil && cached != nil {
		if ride, ok := rideFromSnapshot(cached); ok {
			return ride, nil
		}
	} else if err != nil {
		log.Printf("ride: cache read for ride %s: %v", rideID, err)
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	s.cacheRide(ctx, ride)
	return ride, nil
}

// ListRides returns recent rides, newest first.
func (s *RideService) ListRides(ctx context.Context, limit int) ([]*domain.Ride, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.rideRepo.List(ctx, limit)
}

// AcceptOffer resolves a driver's answer to their pending offer. Accepting
// binds the driver to the ride; declining releases the driver and re-enters
// matching.
func (s *RideService) AcceptOffer(ctx context.Context, driverID, rideID string, accept bool) (*domain.Ride, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	rematch, err := s.resolveOffer(ctx, driverID, rideID, accept)
	if err != nil {
		return nil, err
	}

	if rematch {
		if _, err := s.matching.FindAndOffer(ctx, rideID); err != nil {
			log.Printf("ride: rematch after decline for ride %s: %v", rideID, err)
		}
	}

	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *RideService) resolveOffer(ctx context.Context, driverID, rideID string, accept bool) (rematch bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRideRepo := postgres.NewRideRepositoryWithTx(tx)
	txOfferRepo := postgres.NewOfferRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	offer, err := txOfferRepo.GetPendingByRideAndDriver(ctx, rideID, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrDriverUnavailable
		}
		return false, err
	}

	ride, err := txRideRepo.GetByIDForUpdate(ctx, rideID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()

	if !accept {
		if err = fsm.CheckOffer(offer.Status, domain.OfferStatusDeclined); err != nil {
			return false, err
		}
		if err = txOfferRepo.UpdateStatus(ctx, offer.ID, domain.OfferStatusDeclined); err != nil {
			return false, err
		}
		if err = txDriverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusAvailable); err != nil {
			return false, err
		}
		if err = fsm.CheckRide(ride.Status, domain.RideStatusMatching); err != nil {
			return false, err
		}
		ride.Status = domain.RideStatusMatching
		ride.UpdatedAt = now
		if err = txRideRepo.Update(ctx, ride); err != nil {
			return false, err
		}
		if err = tx.Commit(); err != nil {
			return false, err
		}
		s.invalidateRide(ctx, rideID)
		return true, nil
	}

	if err = fsm.CheckOffer(offer.Status, domain.OfferStatusAccepted); err != nil {
		return false, err
	}
	if err = txOfferRepo.UpdateStatus(ctx, offer.ID, domain.OfferStatusAccepted); err != nil {
		return false, err
	}

	if err = fsm.CheckRide(ride.Status, domain.RideStatusAccepted); err != nil {
		return false, err
	}
	ride.Status = domain.RideStatusAccepted
	ride.MatchedDriverID = driverID
	ride.UpdatedAt = now
	if err = txRideRepo.Update(ctx, ride); err != nil {
		return false, err
	}

	if err = txDriverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOnTrip); err != nil {
		return false, err
	}

	// Any straggler pending offers are retired and their drivers freed.
	released, err := txOfferRepo.ExpirePendingByRideExcept(ctx, rideID, offer.ID)
	if err != nil {
		return false, err
	}
	for _, otherID := range released {
		other, dErr := txDriverRepo.GetByID(ctx, otherID)
		if dErr != nil {
			if errors.Is(dErr, repository.ErrNotFound) {
				continue
			}
			err = dErr
			return false, err
		}
		if other.Status == domain.DriverStatusBusy {
			if err = txDriverRepo.UpdateStatus(ctx, otherID, domain.DriverStatusAvailable); err != nil {
				return false, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	s.invalidateRide(ctx, rideID)

	driver, dErr := s.matching.driverRepo.GetByID(ctx, driverID)
	data := map[string]interface{}{"driver_id": driverID}
	if dErr == nil {
		data["driver_name"] = driver.Name
		data["driver_lat"] = driver.CurrentLat
		data["driver_lng"] = driver.CurrentLng
	}
	if pubErr := s.events.PublishRideEvent(ctx, rideID, "ride:matched", data); pubErr != nil {
		log.Printf("ride: publish ride:matched for ride %s: %v", rideID, pubErr)
	}

	return false, nil
}

// CancelRide cancels a ride from any pre-trip state and frees a bound
// driver.
func (s *RideService) CancelRide(ctx context.Context, rideID string) (ride *domain.Ride, err error) {
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
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	ride, err = txRideRepo.GetByIDForUpdate(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if err = fsm.CheckRide(ride.Status, domain.RideStatusCancelled); err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusCancelled
	ride.UpdatedAt = time.Now().UTC()
	if err = txRideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if ride.MatchedDriverID != "" {
		driver, dErr := txDriverRepo.GetByID(ctx, ride.MatchedDriverID)
		if dErr == nil && (driver.Status == domain.DriverStatusBusy || driver.Status == domain.DriverStatusOnTrip) {
			if err = txDriverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusAvailable); err != nil {
				return nil, err
			}
		} else if dErr != nil && !errors.Is(dErr, repository.ErrNotFound) {
			err = dErr
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidateRide(ctx, rideID)

	if pubErr := s.events.PublishRideEvent(ctx, rideID, "ride:cancelled", map[string]interface{}{
		"reason": "user_cancelled",
	}); pubErr != nil {
		log.Printf("ride: publish ride:cancelled for ride %s: %v", rideID, pubErr)
	}

	return ride, nil
}

func (s *RideService) cacheRide(ctx context.Context, ride *domain.Ride) {
	if err := s.rideCache.Set(ctx, snapshotFromRide(ride)); err != nil {
		log.Printf("ride: cache write for ride %s: %v", ride.ID, err)
	}
}

func (s *RideService) invalidateRide(ctx context.Context, rideID string) {
	if err := s.rideCache.Invalidate(ctx, rideID); err != nil {
		log.Printf("ride: cache invalidate for ride %s: %v", rideID, err)
	}
}

func snapshotFromRide(ride *domain.Ride) *redis.CachedRide {
	return &redis.CachedRide{
		ID:              ride.ID,
		RiderID:         ride.RiderID,
		Status:          string(ride.Status),
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		DestLat:         ride.DestLat,
		DestLng:         ride.DestLng,
		VehicleClass:    string(ride.VehicleClass),
		SurgeMultiplier: ride.SurgeMultiplier.StringFixed(2),
		EstimatedFare:   ride.EstimatedFare.StringFixed(2),
		MatchedDriverID: ride.MatchedDriverID,
	}
}

func rideFromSnapshot(cached *redis.CachedRide) (*domain.Ride, bool) {
	surge, err := decimal.NewFromString(cached.SurgeMultiplier)
	if err != nil {
		return nil, false
	}
	estimate, err := decimal.NewFromString(cached.EstimatedFare)
	if err != nil {
		return nil, false
	}
	return &domain.Ride{
		ID:              cached.ID,
		RiderID:         cached.RiderID,
		Status:          domain.RideStatus(cached.Status),
		PickupLat:       cached.PickupLat,
		PickupLng:       cached.PickupLng,
		DestLat:         cached.DestLat,
		DestLng:         cached.DestLng,
		VehicleClass:    domain.VehicleClass(cached.VehicleClass),
		SurgeMultiplier: surge,
		EstimatedFare:   estimate,
		MatchedDriverID: cached.MatchedDriverID,
	}, true
}
