package fare

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"rideflux/internal/domain"
)

func one() decimal.Decimal { return decimal.RequireFromString("1.0") }

func TestCompute_SedanNoSurge(t *testing.T) {
	b := Compute(domain.VehicleSedan, dec("5"), dec("20"), one())

	assert.Equal(t, "60.00", b.BaseFare.StringFixed(2))
	assert.Equal(t, "70.00", b.DistanceFare.StringFixed(2))
	assert.Equal(t, "40.00", b.TimeFare.StringFixed(2))
	assert.Equal(t, "1.00", b.SurgeMultiplier.StringFixed(2))
	assert.Equal(t, "170.00", b.TotalFare.StringFixed(2))
}

func TestCompute_MiniNoSurge(t *testing.T) {
	b := Compute(domain.VehicleMini, dec("5"), dec("20"), one())
	assert.Equal(t, "120.00", b.TotalFare.StringFixed(2))
}

func TestCompute_SurgeAppliesToSubtotal(t *testing.T) {
	// auto: 25 + 3*8 + 10*1.0 = 59; * 1.5 = 88.50
	b := Compute(domain.VehicleAuto, dec("3"), dec("10"), dec("1.5"))
	assert.Equal(t, "88.50", b.TotalFare.StringFixed(2))
	assert.Equal(t, "1.50", b.SurgeMultiplier.StringFixed(2))
}

func TestCompute_MinimumFareFloor(t *testing.T) {
	// suv short hop: 80 + 0.5*18 + 2*2.5 = 94, below min_fare 100.
	b := Compute(domain.VehicleSUV, dec("0.5"), dec("2"), one())
	assert.Equal(t, "100.00", b.TotalFare.StringFixed(2))

	// Zero-length trip on auto floors at 30.
	b = Compute(domain.VehicleAuto, dec("0"), dec("0"), one())
	assert.Equal(t, "30.00", b.TotalFare.StringFixed(2))
}

func TestCompute_HalfUpRounding(t *testing.T) {
	// mini: 40 + 1.5*10 + 0.3*1.5 = 55.45; * 1.01 = 56.0045 -> 56.00
	b := Compute(domain.VehicleMini, dec("1.5"), dec("0.3"), dec("1.01"))
	assert.Equal(t, "56.00", b.TotalFare.StringFixed(2))

	// mini: 40 + 1*10 + 1*1.5 = 51.5; * 1.05 = 54.075 -> 54.08 (half up)
	b = Compute(domain.VehicleMini, dec("1"), dec("1"), dec("1.05"))
	assert.Equal(t, "54.08", b.TotalFare.StringFixed(2))
}

func TestCompute_UnknownVehicleFallsBackToMini(t *testing.T) {
	b := Compute(domain.VehicleClass("rickshaw"), dec("5"), dec("20"), one())
	assert.Equal(t, "120.00", b.TotalFare.StringFixed(2))
}

func TestComputeMeasured(t *testing.T) {
	// 5000 m, 1200 s on sedan equals the 5 km / 20 min breakdown.
	b := ComputeMeasured(domain.VehicleSedan, 5000, 1200, one())
	assert.Equal(t, "170.00", b.TotalFare.StringFixed(2))
}

func TestEstimate(t *testing.T) {
	// sedan 5 km at 25 km/h -> 12 min: 60 + 70 + 24 = 154.00
	got := Estimate(domain.VehicleSedan, 5, one())
	assert.Equal(t, "154.00", got.StringFixed(2))

	// Zero distance floors at min fare.
	got = Estimate(domain.VehicleAuto, 0, one())
	assert.Equal(t, "30.00", got.StringFixed(2))
}
