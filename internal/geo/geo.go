// Package geo provides distance and zoning helpers for coordinates.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// points given in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ZoneKey maps a coordinate onto a 0.01 degree grid cell. All points inside
// the same cell share a surge zone. The floor(v/0.01)*0.01 form is part of
// the key contract; floor(v*100)/100 puts some coordinates in a
// neighboring cell.
func ZoneKey(lat, lng float64) string {
	zoneLat := math.Floor(lat/0.01) * 0.01
	zoneLng := math.Floor(lng/0.01) * 0.01
	return fmt.Sprintf("%.2f:%.2f", zoneLat, zoneLng)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
