// Package geo provides the great-circle distance math used by the
// check-in proximity rule.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// WGS84 coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRadius reports whether the two coordinates are at most
// radiusMeters apart.
func WithinRadius(lat1, lng1, lat2, lng2, radiusMeters float64) bool {
	return Haversine(lat1, lng1, lat2, lng2) <= radiusMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
