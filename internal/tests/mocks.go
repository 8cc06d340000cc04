package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"rideflux/internal/domain"
	"rideflux/internal/redis"
	"rideflux/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockDriverRepository) LockAvailable(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok || driver.Status != domain.DriverStatusAvailable {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.CurrentLat = lat
	driver.CurrentLng = lng
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRideRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.IdempotencyKey == key {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) List(ctx context.Context, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rides[ride.ID] = ride
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// ──────────────────────────────────────────────
// MOCK OFFER REPOSITORY
// ──────────────────────────────────────────────

// MockOfferRepository is a mock implementation of OfferRepository.
type MockOfferRepository struct {
	mu     sync.RWMutex
	offers map[string]*domain.RideOffer

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockOfferRepository creates a new mock offer repository.
func NewMockOfferRepository() *MockOfferRepository {
	return &MockOfferRepository{
		offers: make(map[string]*domain.RideOffer),
	}
}

// AddOffer adds an offer to the mock repository.
func (m *MockOfferRepository) AddOffer(offer *domain.RideOffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[offer.ID] = offer
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *domain.RideOffer) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.RideID == offer.RideID && o.Status == domain.OfferStatusPending {
			return repository.ErrDuplicate
		}
	}
	m.offers[offer.ID] = offer
	return nil
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*domain.RideOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	offer, ok := m.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *offer
	return &copy, nil
}

func (m *MockOfferRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RideOffer, error) {
	return m.GetByID(ctx, id)
}

func (m *MockOfferRepository) GetPendingByRide(ctx context.Context, rideID string) (*domain.RideOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.offers {
		if o.RideID == rideID && o.Status == domain.OfferStatusPending {
			copy := *o
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockOfferRepository) GetPendingByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.RideOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.offers {
		if o.RideID == rideID && o.DriverID == driverID && o.Status == domain.OfferStatusPending {
			copy := *o
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockOfferRepository) ExpirePendingByRideExcept(ctx context.Context, rideID, keepID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var released []string
	for _, o := range m.offers {
		if o.RideID == rideID && o.ID != keepID && o.Status == domain.OfferStatusPending {
			o.Status = domain.OfferStatusExpired
			released = append(released, o.DriverID)
		}
	}
	return released, nil
}

func (m *MockOfferRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, o := range m.offers {
		if o.Status == domain.OfferStatusPending && !o.ExpiresAt.After(now) {
			ids = append(ids, o.ID)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (m *MockOfferRepository) ListDriverIDsByRide(ctx context.Context, rideID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, o := range m.offers {
		if o.RideID == rideID {
			ids = append(ids, o.DriverID)
		}
	}
	return ids, nil
}

func (m *MockOfferRepository) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer, ok := m.offers[id]
	if !ok {
		return repository.ErrNotFound
	}
	offer.Status = status
	return nil
}

// GetOffer returns offer for test assertions.
func (m *MockOfferRepository) GetOffer(id string) *domain.RideOffer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offers[id]
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.RideID == rideID {
			copy := *t
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

// GetTrip returns trip for assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetActiveByTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TripID == tripID && (p.Status == domain.PaymentStatusProcessing || p.Status == domain.PaymentStatusSucceeded) {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.IdempotencyKey == key {
			copy := *p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

// GetPaymentByTripID returns payment for a trip.
func (m *MockPaymentRepository) GetPaymentByTripID(tripID string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TripID == tripID {
			return p
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK IDEMPOTENCY REPOSITORY
// ──────────────────────────────────────────────

// MockIdempotencyRepository is a mock implementation of IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord
}

// NewMockIdempotencyRepository creates a new mock idempotency repository.
func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		records: make(map[string]*domain.IdempotencyRecord),
	}
}

func idempotencyMapKey(key, endpoint string) string {
	return key + ":" + endpoint
}

func (m *MockIdempotencyRepository) Get(ctx context.Context, key, endpoint string) (*domain.IdempotencyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[idempotencyMapKey(key, endpoint)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *record
	return &copy, nil
}

func (m *MockIdempotencyRepository) Save(ctx context.Context, record *domain.IdempotencyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := idempotencyMapKey(record.Key, record.Endpoint)
	if _, ok := m.records[k]; ok {
		return repository.ErrDuplicate
	}
	m.records[k] = record
	return nil
}

func (m *MockIdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	now := time.Now()
	for k, r := range m.records {
		if r.ExpiresAt.Before(now) {
			delete(m.records, k)
			removed++
		}
	}
	return removed, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[domain.VehicleClass][]redis.DriverLocation
	heartbeat map[string]bool

	// Counters
	UpdateLocationCallCount int32
	RemoveDriverCallCount   int32

	// Error injection
	UpdateLocationError error
	FindNearbyError     error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[domain.VehicleClass][]redis.DriverLocation),
		heartbeat: make(map[string]bool),
	}
}

// AddDriverLocation adds a driver location with a live heartbeat.
func (m *MockLocationStore) AddDriverLocation(vehicle domain.VehicleClass, loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[vehicle] = append(m.locations[vehicle], loc)
	m.heartbeat[loc.DriverID] = true
}

// SetHeartbeat overrides a driver's heartbeat liveness.
func (m *MockLocationStore) SetHeartbeat(driverID string, alive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heartbeat[driverID] = alive
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64, vehicle domain.VehicleClass) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heartbeat[driverID] = true
	for i, loc := range m.locations[vehicle] {
		if loc.DriverID == driverID {
			m.locations[vehicle][i].Lat = lat
			m.locations[vehicle][i].Lng = lng
			return nil
		}
	}
	m.locations[vehicle] = append(m.locations[vehicle], redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) RemoveDriver(ctx context.Context, driverID string, vehicle domain.VehicleClass) error {
	atomic.AddInt32(&m.RemoveDriverCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	locs := m.locations[vehicle]
	for i, loc := range locs {
		if loc.DriverID == driverID {
			m.locations[vehicle] = append(locs[:i], locs[i+1:]...)
			break
		}
	}
	delete(m.heartbeat, driverID)
	return nil
}

func (m *MockLocationStore) FindNearby(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, radiusKm float64, count int) ([]redis.DriverLocation, error) {
	if m.FindNearbyError != nil {
		return nil, m.FindNearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// The mock does no real geo filtering; tests control membership.
	locs := m.locations[vehicle]
	result := make([]redis.DriverLocation, len(locs))
	copy(result, locs)
	if len(result) > count {
		result = result[:count]
	}
	return result, nil
}

func (m *MockLocationStore) CountNearby(ctx context.Context, lat, lng float64, vehicle domain.VehicleClass, radiusKm float64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.locations[vehicle]), nil
}

func (m *MockLocationStore) IsAlive(ctx context.Context, driverID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.heartbeat[driverID], nil
}

// HasLocation checks if a driver location exists for a vehicle class.
func (m *MockLocationStore) HasLocation(vehicle domain.VehicleClass, driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations[vehicle] {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK SURGE STORE
// ──────────────────────────────────────────────

// MockSurgeStore is a mock implementation of SurgeStoreInterface.
type MockSurgeStore struct {
	mu          sync.RWMutex
	demand      map[string]int64
	multipliers map[string]float64

	// Counters
	SetMultiplierCallCount int32

	// Error injection
	GetDemandError error
}

// NewMockSurgeStore creates a new mock surge store.
func NewMockSurgeStore() *MockSurgeStore {
	return &MockSurgeStore{
		demand:      make(map[string]int64),
		multipliers: make(map[string]float64),
	}
}

// SetDemand sets the demand counter for a zone.
func (m *MockSurgeStore) SetDemand(zone string, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demand[zone] = count
}

func (m *MockSurgeStore) RecordDemand(ctx context.Context, zone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demand[zone]++
	return nil
}

func (m *MockSurgeStore) GetDemand(ctx context.Context, zone string) (int64, error) {
	if m.GetDemandError != nil {
		return 0, m.GetDemandError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.demand[zone], nil
}

func (m *MockSurgeStore) GetMultiplier(ctx context.Context, zone string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.multipliers[zone]
	return v, ok, nil
}

func (m *MockSurgeStore) SetMultiplier(ctx context.Context, zone string, multiplier float64) error {
	atomic.AddInt32(&m.SetMultiplierCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multipliers[zone] = multiplier
	return nil
}

// CachedMultiplier returns the cached multiplier for assertions.
func (m *MockSurgeStore) CachedMultiplier(zone string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.multipliers[zone]
	return v, ok
}

// ──────────────────────────────────────────────
// MOCK EXPIRY QUEUE
// ──────────────────────────────────────────────

// MockExpiryQueue is a mock implementation of ExpiryQueueInterface.
type MockExpiryQueue struct {
	mu      sync.Mutex
	entries map[string]time.Time

	// Counters
	EnqueueCallCount int32

	// Error injection
	EnqueueError error
}

// NewMockExpiryQueue creates a new mock expiry queue.
func NewMockExpiryQueue() *MockExpiryQueue {
	return &MockExpiryQueue{
		entries: make(map[string]time.Time),
	}
}

func (m *MockExpiryQueue) Enqueue(ctx context.Context, offerID string, expiresAt time.Time) error {
	atomic.AddInt32(&m.EnqueueCallCount, 1)
	if m.EnqueueError != nil {
		return m.EnqueueError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[offerID] = expiresAt
	return nil
}

func (m *MockExpiryQueue) Due(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []string
	for id, at := range m.entries {
		if !at.After(now) {
			due = append(due, id)
		}
	}
	return due, nil
}

func (m *MockExpiryQueue) Remove(ctx context.Context, offerIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range offerIDs {
		delete(m.entries, id)
	}
	return nil
}

// Contains checks if an offer is queued.
func (m *MockExpiryQueue) Contains(offerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[offerID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK RIDE CACHE
// ──────────────────────────────────────────────

// MockRideCache is a mock implementation of RideCacheInterface.
type MockRideCache struct {
	mu    sync.RWMutex
	rides map[string]*redis.CachedRide

	// Counters
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockRideCache creates a new mock ride cache.
func NewMockRideCache() *MockRideCache {
	return &MockRideCache{
		rides: make(map[string]*redis.CachedRide),
	}
}

func (m *MockRideCache) Set(ctx context.Context, ride *redis.CachedRide) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideCache) Get(ctx context.Context, rideID string) (*redis.CachedRide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return nil, nil
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideCache) Invalidate(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rides, rideID)
	return nil
}

// Cached reports whether a ride snapshot is present.
func (m *MockRideCache) Cached(rideID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rides[rideID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockEventPublisher records published events for assertions.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []redis.Event
}

// NewMockEventPublisher creates a new mock event publisher.
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishRideEvent(ctx context.Context, rideID, eventType string, data map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, redis.Event{Type: eventType, RideID: rideID, Data: data})
	return nil
}

func (m *MockEventPublisher) PublishDriverEvent(ctx context.Context, driverID, eventType string, data map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, redis.Event{Type: eventType, DriverID: driverID, Data: data})
	return nil
}

// Events returns a snapshot of everything published.
func (m *MockEventPublisher) Events() []redis.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]redis.Event, len(m.events))
	copy(result, m.events)
	return result
}

// HasEvent reports whether an event of the given type was published.
func (m *MockEventPublisher) HasEvent(eventType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK IDEMPOTENCY STORE
// ──────────────────────────────────────────────

// MockIdempotencyStore is a mock implementation of IdempotencyStoreInterface.
type MockIdempotencyStore struct {
	mu        sync.RWMutex
	responses map[string]*redis.CachedResponse
}

// NewMockIdempotencyStore creates a new mock idempotency store.
func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		responses: make(map[string]*redis.CachedResponse),
	}
}

func (m *MockIdempotencyStore) Get(ctx context.Context, key, endpoint string) (*redis.CachedResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp, ok := m.responses[idempotencyMapKey(key, endpoint)]
	if !ok {
		return nil, nil
	}
	copy := *resp
	return &copy, nil
}

func (m *MockIdempotencyStore) Set(ctx context.Context, key, endpoint string, resp *redis.CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[idempotencyMapKey(key, endpoint)] = resp
	return nil
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockTimeout = errors.New("mock: operation timeout")
)
