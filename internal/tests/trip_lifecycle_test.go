package tests

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
	"rideflux/internal/fsm"
	"rideflux/internal/service"
)

func acceptedRideRow(rideID, driverID string, status domain.RideStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "rider_id", "status", "pickup_lat", "pickup_lng", "pickup_address",
		"dest_lat", "dest_lng", "dest_address", "vehicle_class", "payment_method",
		"surge_multiplier", "estimated_fare", "matched_driver_id", "idempotency_key",
		"offers_made", "max_offers", "created_at", "updated_at",
	}).AddRow(
		rideID, "rider-1", string(status), 12.97, 77.59, "",
		12.93, 77.62, "", string(domain.VehicleSedan), string(domain.PaymentMethodCard),
		"1.00", "170.00", driverID, nil,
		1, 3, now, now,
	)
}

func tripRow(tripID, rideID string, status domain.TripStatus, surge string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "ride_id", "driver_id", "rider_id", "status", "started_at", "completed_at",
		"distance_m", "duration_s", "base_fare", "distance_fare", "time_fare",
		"surge_multiplier", "total_fare", "created_at",
	}).AddRow(
		tripID, rideID, "driver-1", "rider-1", string(status), now, nil,
		0, 0, "0", "0", "0",
		surge, "0", now,
	)
}

func TestStartTrip_CreatesInProgressTripWithFrozenSurge(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rideCache := NewMockRideCache()
	events := NewMockEventPublisher()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM rides WHERE id = \$1 FOR UPDATE`).
		WithArgs("ride-1").
		WillReturnRows(acceptedRideRow("ride-1", "driver-1", domain.RideStatusAccepted))
	mock.ExpectExec(`UPDATE rides`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO trips`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := service.NewTripService(db, NewMockTripRepository(), NewMockRideRepository(), rideCache, events)

	trip, err := svc.StartTrip(ctx, "ride-1")
	require.NoError(t, err)

	assert.Equal(t, domain.TripStatusInProgress, trip.Status)
	assert.Equal(t, "driver-1", trip.DriverID)
	assert.Equal(t, "1", trip.SurgeMultiplier.String())
	assert.True(t, events.HasEvent("ride:started"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTrip_RejectsUnmatchedRide(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM rides WHERE id = \$1 FOR UPDATE`).
		WithArgs("ride-1").
		WillReturnRows(acceptedRideRow("ride-1", "driver-1", domain.RideStatusMatching))
	mock.ExpectRollback()

	svc := service.NewTripService(db, NewMockTripRepository(), NewMockRideRepository(), NewMockRideCache(), NewMockEventPublisher())

	_, err = svc.StartTrip(ctx, "ride-1")

	var invalid *fsm.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "matching", invalid.From)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndTrip_ComputesMeteredFareAndReleasesDriver(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	events := NewMockEventPublisher()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1`).
		WithArgs("trip-1").
		WillReturnRows(tripRow("trip-1", "ride-1", domain.TripStatusInProgress, "1.00"))
	mock.ExpectQuery(`SELECT (.+) FROM rides WHERE id = \$1`).
		WithArgs("ride-1").
		WillReturnRows(acceptedRideRow("ride-1", "driver-1", domain.RideStatusInTrip))
	mock.ExpectExec(`UPDATE trips`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rides`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE drivers SET status = \$1 WHERE id = \$2`).
		WithArgs(string(domain.DriverStatusAvailable), "driver-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := service.NewTripService(db, NewMockTripRepository(), NewMockRideRepository(), NewMockRideCache(), events)

	// Sedan, 5 km, 20 min, surge 1.0: 60 + 5*14 + 20*2 = 170.00.
	trip, err := svc.EndTrip(ctx, "trip-1", 5000, 1200)
	require.NoError(t, err)

	assert.Equal(t, domain.TripStatusCompleted, trip.Status)
	assert.Equal(t, "170.00", trip.TotalFare.StringFixed(2))
	assert.Equal(t, "60.00", trip.BaseFare.StringFixed(2))
	assert.Equal(t, "70.00", trip.DistanceFare.StringFixed(2))
	assert.Equal(t, "40.00", trip.TimeFare.StringFixed(2))
	assert.Equal(t, int64(5000), trip.DistanceM)
	assert.True(t, events.HasEvent("ride:completed"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndTrip_RejectsCompletedTrip(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1`).
		WithArgs("trip-1").
		WillReturnRows(tripRow("trip-1", "ride-1", domain.TripStatusCompleted, "1.00"))
	mock.ExpectRollback()

	svc := service.NewTripService(db, NewMockTripRepository(), NewMockRideRepository(), NewMockRideCache(), NewMockEventPublisher())

	_, err = svc.EndTrip(ctx, "trip-1", 5000, 1200)

	var invalid *fsm.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
