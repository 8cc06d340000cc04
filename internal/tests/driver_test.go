package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/domain"
	"rideflux/internal/service"
)

func TestDriverHeartbeat_BringsOfflineDriverOnline(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	events := NewMockEventPublisher()

	driverRepo.AddDriver(&domain.Driver{
		ID:           "driver-1",
		Name:         "Asha",
		VehicleClass: domain.VehicleMini,
		Status:       domain.DriverStatusOffline,
	})

	svc := service.NewDriverService(driverRepo, locationStore, events)

	driver, err := svc.UpdateLocation(ctx, "driver-1", 12.97, 77.59)
	require.NoError(t, err)

	assert.Equal(t, domain.DriverStatusAvailable, driver.Status)
	assert.Equal(t, 12.97, driver.CurrentLat)
	assert.Equal(t, domain.DriverStatusAvailable, driverRepo.GetDriver("driver-1").Status)
	assert.True(t, locationStore.HasLocation(domain.VehicleMini, "driver-1"))
	assert.True(t, events.HasEvent("driver:location_update"))
}

func TestDriverHeartbeat_KeepsBusyDriverBusy(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{
		ID:           "driver-1",
		VehicleClass: domain.VehicleSedan,
		Status:       domain.DriverStatusBusy,
	})

	svc := service.NewDriverService(driverRepo, NewMockLocationStore(), NewMockEventPublisher())

	driver, err := svc.UpdateLocation(ctx, "driver-1", 12.97, 77.59)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverStatusBusy, driver.Status)
}

func TestDriverHeartbeat_RejectsBadCoordinates(t *testing.T) {
	ctx := context.Background()

	svc := service.NewDriverService(NewMockDriverRepository(), NewMockLocationStore(), NewMockEventPublisher())

	_, err := svc.UpdateLocation(ctx, "driver-1", 91.0, 77.59)
	assert.ErrorIs(t, err, service.ErrInvalidLocation)
}

func TestDriverSetStatus_OfflineLeavesGeoIndex(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	events := NewMockEventPublisher()

	driverRepo.AddDriver(&domain.Driver{
		ID:           "driver-1",
		VehicleClass: domain.VehicleSUV,
		Status:       domain.DriverStatusAvailable,
	})

	svc := service.NewDriverService(driverRepo, locationStore, events)

	_, err := svc.UpdateLocation(ctx, "driver-1", 12.97, 77.59)
	require.NoError(t, err)

	driver, err := svc.SetStatus(ctx, "driver-1", domain.DriverStatusOffline)
	require.NoError(t, err)

	assert.Equal(t, domain.DriverStatusOffline, driver.Status)
	assert.False(t, locationStore.HasLocation(driver.VehicleClass, "driver-1"))
	assert.True(t, events.HasEvent("driver:status_changed"))
}

func TestDriverRegister_StartsOffline(t *testing.T) {
	ctx := context.Background()

	driverRepo := NewMockDriverRepository()
	svc := service.NewDriverService(driverRepo, NewMockLocationStore(), NewMockEventPublisher())

	driver, err := svc.Register(ctx, service.RegisterDriverRequest{
		Name:         "Binod",
		Email:        "binod@example.com",
		Phone:        "9900000000",
		VehicleClass: domain.VehicleSedan,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, driver.ID)
	assert.Equal(t, domain.DriverStatusOffline, driver.Status)
	assert.Equal(t, int32(1), driverRepo.CreateCallCount)
}

func TestDriverRegister_RejectsUnknownVehicleClass(t *testing.T) {
	ctx := context.Background()

	svc := service.NewDriverService(NewMockDriverRepository(), NewMockLocationStore(), NewMockEventPublisher())

	_, err := svc.Register(ctx, service.RegisterDriverRequest{
		Name:         "Binod",
		VehicleClass: domain.VehicleClass("tractor"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidVehicleClass)
}
