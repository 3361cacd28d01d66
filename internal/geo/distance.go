package geo

import (
	"github.com/golang/geo/s2"

	"github.com/resqnow/emergency-dispatch/internal/models"
)

// earthRadiusKm is the mean Earth radius used to convert the central angle
// into a surface distance.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometers.
// Symmetric, and zero for identical points. Callers must not pass missing
// coordinates; this function does not validate.
func DistanceKm(a, b models.LatLng) float64 {
	from := s2.LatLngFromDegrees(a.Lat, a.Lng)
	to := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return from.Distance(to).Radians() * earthRadiusKm
}
