package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(40.7128, -74.0060, 40.7128, -74.0060))
}

func TestHaversineOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is about 111.2 km on the mean-radius sphere.
	d := Haversine(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 50)
}

func TestHaversineKnownCityPair(t *testing.T) {
	// Paris to London, roughly 344 km.
	d := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344000, d, 2000)
}

func TestHaversineSymmetry(t *testing.T) {
	d1 := Haversine(40.7128, -74.0060, 34.0522, -118.2437)
	d2 := Haversine(34.0522, -118.2437, 40.7128, -74.0060)
	assert.InDelta(t, d1, d2, 0.000001)
}

func TestWithinRadius(t *testing.T) {
	lat, lng := 40.7128, -74.0060

	// ~89 m north of the venue.
	assert.True(t, WithinRadius(lat+0.0008, lng, lat, lng, 100))

	// ~222 m north of the venue.
	assert.False(t, WithinRadius(lat+0.002, lng, lat, lng, 100))
}
