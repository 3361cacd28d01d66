package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resqnow/emergency-dispatch/internal/models"
)

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b models.LatLng
	}{
		{models.LatLng{Lat: 12.97, Lng: 77.59}, models.LatLng{Lat: 13.08, Lng: 80.27}},
		{models.LatLng{Lat: -33.86, Lng: 151.21}, models.LatLng{Lat: 51.5, Lng: -0.12}},
		{models.LatLng{Lat: 0, Lng: 0}, models.LatLng{Lat: 0, Lng: 180}},
	}

	for _, p := range pairs {
		assert.InDelta(t, DistanceKm(p.a, p.b), DistanceKm(p.b, p.a), 1e-9)
	}
}

func TestDistanceKm_ZeroForIdenticalPoints(t *testing.T) {
	p := models.LatLng{Lat: 12.0, Lng: 77.0}
	assert.Equal(t, 0.0, DistanceKm(p, p))
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Bangalore to Chennai, roughly 290 km great-circle.
	blr := models.LatLng{Lat: 12.9716, Lng: 77.5946}
	maa := models.LatLng{Lat: 13.0827, Lng: 80.2707}

	d := DistanceKm(blr, maa)
	assert.InDelta(t, 290, d, 10)
}

func TestDistanceKm_OneDegreeOfLatitude(t *testing.T) {
	a := models.LatLng{Lat: 10, Lng: 77}
	b := models.LatLng{Lat: 11, Lng: 77}

	// One degree of latitude is ~111 km everywhere on the sphere.
	assert.InDelta(t, 111.2, DistanceKm(a, b), 0.5)
}
