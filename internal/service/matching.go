package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"rideflux/internal/config"
	"rideflux/internal/domain"
	"rideflux/internal/fsm"
	"rideflux/internal/redis"
	"rideflux/internal/repository"
	"rideflux/internal/repository/postgres"
)

// MatchingService pairs rides in matching with nearby available drivers by
// issuing short-lived offers, one pending offer per ride at a time.
type MatchingService struct {
	db            *sql.DB
	cfg           config.MatchingConfig
	locationStore redis.LocationStoreInterface
	expiryQueue   redis.ExpiryQueueInterface
	events        redis.EventPublisherInterface
	rideRepo      repository.RideRepository
	offerRepo     repository.OfferRepository
	driverRepo    repository.DriverRepository
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(
	db *sql.DB,
	cfg config.MatchingConfig,
	locationStore redis.LocationStoreInterface,
	expiryQueue redis.ExpiryQueueInterface,
	events redis.EventPublisherInterface,
	rideRepo repository.RideRepository,
	offerRepo repository.OfferRepository,
	driverRepo repository.DriverRepository,
) *MatchingService {
	return &MatchingService{
		db:            db,
		cfg:           cfg,
		locationStore: locationStore,
		expiryQueue:   expiryQueue,
		events:        events,
		rideRepo:      rideRepo,
		offerRepo:     offerRepo,
		driverRepo:    driverRepo,
	}
}

// FindAndOffer searches outward from the ride's pickup and offers it to the
// closest eligible driver. Returns (nil, nil) when no offer could be issued;
// the ride is then either left in matching or marked no_drivers.
func (s *MatchingService) FindAndOffer(ctx context.Context, rideID string) (*domain.RideOffer, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusMatching {
		return nil, nil
	}

	excluded, err := s.offeredDriverIDs(ctx, ride.ID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.locationStore.FindNearby(ctx, ride.PickupLat, ride.PickupLng, ride.VehicleClass, s.cfg.InitialRadiusKm, s.cfg.CandidateCount)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = s.locationStore.FindNearby(ctx, ride.PickupLat, ride.PickupLng, ride.VehicleClass, s.cfg.ExpandedRadiusKm, s.cfg.CandidateCount)
		if err != nil {
			return nil, err
		}
	}

	for _, candidate := range candidates {
		if _, seen := excluded[candidate.DriverID]; seen {
			continue
		}

		alive, err := s.locationStore.IsAlive(ctx, candidate.DriverID)
		if err != nil {
			log.Printf("matching: heartbeat check for driver %s: %v", candidate.DriverID, err)
			continue
		}
		if !alive {
			continue
		}

		offer, err := s.lockAndOffer(ctx, ride, candidate.DriverID)
		if err != nil {
			if errors.Is(err, ErrDriverUnavailable) {
				continue
			}
			return nil, err
		}
		return offer, nil
	}

	if ride.OffersMade >= ride.MaxOffers {
		if err := s.markNoDrivers(ctx, ride.ID); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// lockAndOffer claims the driver and issues the offer in one transaction.
// The ride moves to offered in the same commit as the offer insert, which
// keeps at most one offer pending per ride.
func (s *MatchingService) lockAndOffer(ctx context.Context, ride *domain.Ride, driverID string) (offer *domain.RideOffer, err error) {
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
	txOfferRepo := postgres.NewOfferRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	lockedRide, err := txRideRepo.GetByIDForUpdate(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	if lockedRide.Status != domain.RideStatusMatching {
		return nil, ErrDriverUnavailable
	}

	driver, err := txDriverRepo.LockAvailable(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverUnavailable
		}
		return nil, err
	}

	if err = txDriverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusBusy); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	offer = &domain.RideOffer{
		ID:        uuid.NewString(),
		RideID:    lockedRide.ID,
		DriverID:  driver.ID,
		Status:    domain.OfferStatusPending,
		ExpiresAt: now.Add(s.cfg.OfferTTL),
		CreatedAt: now,
	}
	if err = txOfferRepo.Create(ctx, offer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = ErrDriverUnavailable
		}
		return nil, err
	}

	if err = fsm.CheckRide(lockedRide.Status, domain.RideStatusOffered); err != nil {
		return nil, err
	}
	lockedRide.Status = domain.RideStatusOffered
	lockedRide.OffersMade++
	lockedRide.UpdatedAt = now
	if err = txRideRepo.Update(ctx, lockedRide); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	ride.Status = lockedRide.Status
	ride.OffersMade = lockedRide.OffersMade

	// A failed enqueue is not unwound; ExpireDue's database sweep picks
	// up pending offers that never made it into the queue.
	if qErr := s.expiryQueue.Enqueue(ctx, offer.ID, offer.ExpiresAt); qErr != nil {
		log.Printf("matching: enqueue expiry for offer %s: %v", offer.ID, qErr)
	}

	s.publishOffered(ctx, lockedRide, driver, offer)
	return offer, nil
}

func (s *MatchingService) publishOffered(ctx context.Context, ride *domain.Ride, driver *domain.Driver, offer *domain.RideOffer) {
	if err := s.events.PublishDriverEvent(ctx, driver.ID, "ride:offered", map[string]interface{}{
		"ride_id":        ride.ID,
		"offer_id":       offer.ID,
		"pickup_lat":     ride.PickupLat,
		"pickup_lng":     ride.PickupLng,
		"dest_lat":       ride.DestLat,
		"dest_lng":       ride.DestLng,
		"vehicle_type":   string(ride.VehicleClass),
		"estimated_fare": ride.EstimatedFare.StringFixed(2),
		"expires_at":     offer.ExpiresAt.Format(time.RFC3339),
	}); err != nil {
		log.Printf("matching: publish ride:offered to driver %s: %v", driver.ID, err)
	}
	if err := s.events.PublishRideEvent(ctx, ride.ID, "ride:offered", map[string]interface{}{
		"driver_id":   driver.ID,
		"driver_name": driver.Name,
		"offer_id":    offer.ID,
	}); err != nil {
		log.Printf("matching: publish ride:offered for ride %s: %v", ride.ID, err)
	}
}

// markNoDrivers terminates a ride whose offer budget is spent. The engine
// applies this transition directly; it is not reachable through accept or
// decline.
func (s *MatchingService) markNoDrivers(ctx context.Context, rideID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRideRepo := postgres.NewRideRepositoryWithTx(tx)

	ride, err := txRideRepo.GetByIDForUpdate(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.Status != domain.RideStatusMatching {
		_ = tx.Rollback()
		return nil
	}

	ride.Status = domain.RideStatusNoDrivers
	ride.UpdatedAt = time.Now().UTC()
	if err = txRideRepo.Update(ctx, ride); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	if pubErr := s.events.PublishRideEvent(ctx, rideID, "ride:no_drivers", map[string]interface{}{
		"reason": "max_offers_exhausted",
	}); pubErr != nil {
		log.Printf("matching: publish ride:no_drivers for ride %s: %v", rideID, pubErr)
	}
	return nil
}

// HandleOfferExpired retires a pending offer whose deadline passed,
// releases its driver, and re-enters matching for the ride. Offers no
// longer pending are skipped, which makes replays harmless.
func (s *MatchingService) HandleOfferExpired(ctx context.Context, offerID string) error {
	rideID, rematch, err := s.expireOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if !rematch {
		return nil
	}

	_, err = s.FindAndOffer(ctx, rideID)
	return err
}

func (s *MatchingService) expireOffer(ctx context.Context, offerID string) (rideID string, rematch bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRideRepo := postgres.NewRideRepositoryWithTx(tx)
	txOfferRepo := postgres.NewOfferRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	offer, err := txOfferRepo.GetByIDForUpdate(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = tx.Rollback()
			return "", false, nil
		}
		return "", false, err
	}
	if offer.Status != domain.OfferStatusPending {
		_ = tx.Rollback()
		return "", false, nil
	}

	if err = txOfferRepo.UpdateStatus(ctx, offer.ID, domain.OfferStatusExpired); err != nil {
		return "", false, err
	}

	driver, err := txDriverRepo.GetByID(ctx, offer.DriverID)
	if err == nil && driver.Status == domain.DriverStatusBusy {
		if err = txDriverRepo.UpdateStatus(ctx, driver.ID, domain.DriverStatusAvailable); err != nil {
			return "", false, err
		}
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", false, err
	}
	err = nil

	ride, err := txRideRepo.GetByIDForUpdate(ctx, offer.RideID)
	if err != nil {
		return "", false, err
	}
	if ride.Status == domain.RideStatusOffered {
		ride.Status = domain.RideStatusMatching
		ride.UpdatedAt = time.Now().UTC()
		if err = txRideRepo.Update(ctx, ride); err != nil {
			return "", false, err
		}
		rematch = true
	}

	if err = tx.Commit(); err != nil {
		return "", false, err
	}
	return ride.ID, rematch, nil
}

// RunExpiryLoop polls for expired offers until ctx is cancelled. Errors are
// logged per offer so one bad entry cannot stall the loop.
func (s *MatchingService) RunExpiryLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ExpiryPollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ExpireDue(ctx)
		}
	}
}

// expirySweepLimit caps how many overdue offers one sweep pulls from the
// database.
const expirySweepLimit = 100

// ExpireDue drains the expiry queue, then sweeps the database for pending
// offers past their deadline that the queue lost (a failed enqueue, a
// flushed Redis). An offer handled by the drain is no longer pending when
// the sweep sees it, so the overlap is harmless.
func (s *MatchingService) ExpireDue(ctx context.Context) {
	now := time.Now()
	s.drainQueue(ctx, now)

	overdue, err := s.offerRepo.ListExpiredPending(ctx, now, expirySweepLimit)
	if err != nil {
		log.Printf("matching: sweep overdue offers: %v", err)
		return
	}
	for _, offerID := range overdue {
		if err := s.HandleOfferExpired(ctx, offerID); err != nil {
			log.Printf("matching: expire offer %s: %v", offerID, err)
		}
	}
}

func (s *MatchingService) drainQueue(ctx context.Context, now time.Time) {
	due, err := s.expiryQueue.Due(ctx, now)
	if err != nil {
		log.Printf("matching: poll expiry queue: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	if err := s.expiryQueue.Remove(ctx, due...); err != nil {
		log.Printf("matching: dequeue expired offers: %v", err)
		return
	}

	for _, offerID := range due {
		if err := s.HandleOfferExpired(ctx, offerID); err != nil {
			log.Printf("matching: expire offer %s: %v", offerID, err)
		}
	}
}

func (s *MatchingService) offeredDriverIDs(ctx context.Context, rideID string) (map[string]struct{}, error) {
	ids, err := s.offerRepo.ListDriverIDsByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
