package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
	"rideflux/internal/repository"
)

var driverRowColumns = []string{
	"id", "name", "email", "phone", "vehicle_class", "status",
	"current_lat", "current_lng", "rating", "created_at",
}

func TestDriverRepository_LockAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDriverRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(driverRowColumns).
		AddRow("drv-1", "Asha", "asha@example.com", "9876543210", "sedan", "available", 12.97, 77.59, "4.80", now)

	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id = (.+) AND status = (.+) FOR UPDATE SKIP LOCKED").
		WithArgs("drv-1", "available").
		WillReturnRows(rows)

	driver, err := repo.LockAvailable(context.Background(), "drv-1")
	require.NoError(t, err)
	assert.Equal(t, "drv-1", driver.ID)
	assert.Equal(t, domain.DriverStatusAvailable, driver.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepository_LockAvailable_SkippedWhenLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDriverRepository(db)

	// A concurrently locked or busy driver yields no row.
	mock.ExpectQuery("SELECT (.+) FROM drivers WHERE id = (.+) AND status = (.+) FOR UPDATE SKIP LOCKED").
		WithArgs("drv-busy", "available").
		WillReturnRows(sqlmock.NewRows(driverRowColumns))

	_, err = repo.LockAvailable(context.Background(), "drv-busy")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDriverRepository(db)

	mock.ExpectExec("UPDATE drivers SET status").
		WithArgs("busy", "drv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), "drv-1", domain.DriverStatusBusy)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepository_UpdateLocation_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDriverRepository(db)

	mock.ExpectExec("UPDATE drivers SET current_lat").
		WithArgs(12.97, 77.59, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateLocation(context.Background(), "missing", 12.97, 77.59)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
