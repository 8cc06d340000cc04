package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "offline"
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusBusy      DriverStatus = "busy"
	DriverStatusOnTrip    DriverStatus = "on_trip"
)

// VehicleClass represents the service class of a driver's vehicle.
type VehicleClass string

const (
	VehicleAuto  VehicleClass = "auto"
	VehicleMini  VehicleClass = "mini"
	VehicleSedan VehicleClass = "sedan"
	VehicleSUV   VehicleClass = "suv"
)

// ValidVehicleClass reports whether v is a known vehicle class.
func ValidVehicleClass(v VehicleClass) bool {
	switch v {
	case VehicleAuto, VehicleMini, VehicleSedan, VehicleSUV:
		return true
	}
	return false
}

// Driver represents a driver in the system. Position is the last heartbeat
// position; the authoritative real-time index lives in Redis.
type Driver struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	VehicleClass VehicleClass
	Status       DriverStatus
	CurrentLat   float64
	CurrentLng   float64
	Rating       decimal.Decimal
	CreatedAt    time.Time
}
