// Package fare computes trip fares with exact decimal arithmetic.
package fare

import (
	"github.com/shopspring/decimal"

	"rideflux/internal/domain"
)

// Rate holds the pricing parameters for one vehicle class. PerKm and PerMin
// apply to fractional kilometers and minutes.
type Rate struct {
	Base    decimal.Decimal
	PerKm   decimal.Decimal
	PerMin  decimal.Decimal
	MinFare decimal.Decimal
}

var rateTable = map[domain.VehicleClass]Rate{
	domain.VehicleAuto:  {Base: dec("25"), PerKm: dec("8"), PerMin: dec("1.0"), MinFare: dec("30")},
	domain.VehicleMini:  {Base: dec("40"), PerKm: dec("10"), PerMin: dec("1.5"), MinFare: dec("50")},
	domain.VehicleSedan: {Base: dec("60"), PerKm: dec("14"), PerMin: dec("2.0"), MinFare: dec("80")},
	domain.VehicleSUV:   {Base: dec("80"), PerKm: dec("18"), PerMin: dec("2.5"), MinFare: dec("100")},
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Breakdown is the result of a fare computation. The total is rounded to
// two decimal places, half up.
type Breakdown struct {
	BaseFare        decimal.Decimal
	DistanceFare    decimal.Decimal
	TimeFare        decimal.Decimal
	SurgeMultiplier decimal.Decimal
	TotalFare       decimal.Decimal
}

// RateFor returns the rate card for a vehicle class. Unknown classes fall
// back to mini.
func RateFor(vehicle domain.VehicleClass) Rate {
	if rate, ok := rateTable[vehicle]; ok {
		return rate
	}
	return rateTable[domain.VehicleMini]
}

// Compute derives the fare for a trip. The surge multiplier applies to the
// whole subtotal, then the class minimum fare floors the result.
func Compute(vehicle domain.VehicleClass, distanceKm, durationMin, surge decimal.Decimal) Breakdown {
	rate := RateFor(vehicle)

	distanceFare := distanceKm.Mul(rate.PerKm)
	timeFare := durationMin.Mul(rate.PerMin)

	subtotal := rate.Base.Add(distanceFare).Add(timeFare)
	total := subtotal.Mul(surge)
	if total.LessThan(rate.MinFare) {
		total = rate.MinFare
	}

	return Breakdown{
		BaseFare:        rate.Base.Round(2),
		DistanceFare:    distanceFare.Round(2),
		TimeFare:        timeFare.Round(2),
		SurgeMultiplier: surge.Round(2),
		TotalFare:       total.Round(2),
	}
}

// ComputeMeasured derives the fare from raw trip telemetry in meters and
// seconds.
func ComputeMeasured(vehicle domain.VehicleClass, distanceM, durationS int64, surge decimal.Decimal) Breakdown {
	distanceKm := decimal.NewFromInt(distanceM).Div(decimal.NewFromInt(1000))
	durationMin := decimal.NewFromInt(durationS).Div(decimal.NewFromInt(60))
	return Compute(vehicle, distanceKm, durationMin, surge)
}

// Estimate computes an up-front fare quote from a straight-line distance in
// kilometers, assuming 25 km/h city driving.
func Estimate(vehicle domain.VehicleClass, distanceKm float64, surge decimal.Decimal) decimal.Decimal {
	var durationMin float64
	if distanceKm > 0 {
		durationMin = distanceKm / 25.0 * 60
	}
	b := Compute(vehicle, decimal.NewFromFloat(distanceKm), decimal.NewFromFloat(durationMin), surge)
	return b.TotalFare
}
