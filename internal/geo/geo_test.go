package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Same point.
	assert.InDelta(t, 0, HaversineKm(12.9716, 77.5946, 12.9716, 77.5946), 1e-9)

	// One degree of latitude is roughly 111.2 km.
	assert.InDelta(t, 111.2, HaversineKm(12.0, 77.0, 13.0, 77.0), 0.5)

	// Bangalore MG Road to Koramangala, roughly 5.4 km.
	d := HaversineKm(12.9758, 77.6045, 12.9352, 77.6245)
	assert.Greater(t, d, 4.5)
	assert.Less(t, d, 6.0)
}

func TestZoneKey(t *testing.T) {
	assert.Equal(t, "12.97:77.59", ZoneKey(12.9716, 77.5946))
	assert.Equal(t, "12.97:77.59", ZoneKey(12.9799, 77.5999))
	assert.Equal(t, "0.00:0.00", ZoneKey(0, 0))
	assert.Equal(t, "-12.98:-77.60", ZoneKey(-12.9716, -77.5946))
}

// Coordinates whose cell depends on the exact floor form. These pin the
// division grid every peer process computes.
func TestZoneKey_FloatEdgeCells(t *testing.T) {
	assert.Equal(t, "1.18:2.12", ZoneKey(1.19, 2.13))
	assert.Equal(t, "4.00:77.59", ZoneKey(4.01, 77.60))
	assert.Equal(t, "12.98:77.59", ZoneKey(12.98, 77.60))
}
