package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

var rideRowColumns = []string{
	"id", "rider_id", "status", "pickup_lat", "pickup_lng", "pickup_address",
	"dest_lat", "dest_lng", "dest_address", "vehicle_class", "payment_method",
	"surge_multiplier", "estimated_fare", "matched_driver_id", "idempotency_key",
	"offers_made", "max_offers", "created_at", "updated_at",
}

func sampleRideRow(now time.Time) []driver.Value {
	return []driver.Value{
		"ride-1", "rider-1", "matching", 12.9716, 77.5946, "MG Road",
		12.9352, 77.6245, "Koramangala", "sedan", "card",
		"1.50", "154.00", nil, "idem-1",
		0, 3, now, now,
	}
}

func TestRideRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)
	now := time.Now()

	ride := &domain.Ride{
		ID:              "ride-1",
		RiderID:         "rider-1",
		Status:          domain.RideStatusPending,
		PickupLat:       12.9716,
		PickupLng:       77.5946,
		PickupAddress:   "MG Road",
		DestLat:         12.9352,
		DestLng:         77.6245,
		DestAddress:     "Koramangala",
		VehicleClass:    domain.VehicleSedan,
		PaymentMethod:   domain.PaymentMethodCard,
		SurgeMultiplier: decimal.RequireFromString("1.50"),
		EstimatedFare:   decimal.RequireFromString("154.00"),
		IdempotencyKey:  "idem-1",
		MaxOffers:       3,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	mock.ExpectExec("INSERT INTO rides").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), ride)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(rideRowColumns).AddRow(sampleRideRow(now)...)
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id").
		WithArgs("ride-1").
		WillReturnRows(rows)

	ride, err := repo.GetByID(context.Background(), "ride-1")
	require.NoError(t, err)
	assert.Equal(t, "ride-1", ride.ID)
	assert.Equal(t, domain.RideStatusMatching, ride.Status)
	assert.Equal(t, "1.5", ride.SurgeMultiplier.String())
	assert.Equal(t, "", ride.MatchedDriverID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(rideRowColumns))

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_GetByIDForUpdate_TakesRowLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(rideRowColumns).AddRow(sampleRideRow(now)...)
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs("ride-1").
		WillReturnRows(rows)

	ride, err := repo.GetByIDForUpdate(context.Background(), "ride-1")
	require.NoError(t, err)
	assert.Equal(t, "ride-1", ride.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRideRepository(db)

	mock.ExpectExec("UPDATE rides").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), &domain.Ride{ID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
