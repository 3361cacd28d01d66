package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

func incidentAt(lat, lng float64, status models.IncidentStatus, age time.Duration) *models.IncidentReport {
	return &models.IncidentReport{
		ID:        uuid.New(),
		Latitude:  lat,
		Longitude: lng,
		Status:    status,
		CreatedAt: time.Now().Add(-age),
	}
}

func feedDataFor(incidents ...*models.IncidentReport) *service.FeedData {
	return &service.FeedData{
		Incidents: incidents,
		Locations: map[uuid.UUID]models.LatLng{},
		FetchedAt: time.Now(),
	}
}

func TestBuild_AmbulanceNearestFirst(t *testing.T) {
	viewer := models.ResponderContext{
		UserID:   uuid.New(),
		Role:     models.RoleAmbulance,
		Location: &models.LatLng{Lat: 12.97, Lng: 77.59},
	}

	// Six pending incidents at increasing distance from the viewer.
	incidents := []*models.IncidentReport{
		incidentAt(13.50, 77.59, models.StatusPending, time.Minute),
		incidentAt(12.98, 77.59, models.StatusPending, time.Minute),
		incidentAt(13.20, 77.59, models.StatusPending, time.Minute),
		incidentAt(12.97, 77.60, models.StatusPending, time.Minute),
		incidentAt(14.00, 77.59, models.StatusPending, time.Minute),
		incidentAt(13.05, 77.59, models.StatusPending, time.Minute),
	}

	cards, err := Build(viewer, feedDataFor(incidents...), 4)

	require.NoError(t, err)
	require.Len(t, cards, 4)
	for i, card := range cards {
		require.NotNil(t, card.DistanceKm)
		if i > 0 {
			assert.LessOrEqual(t, *cards[i-1].DistanceKm, *card.DistanceKm)
		}
		assert.Equal(t, []Action{ActionAccept}, card.Actions)
		assert.False(t, card.Locked)
	}
}

func TestBuild_AmbulanceWithoutLocationFallsBackToNewest(t *testing.T) {
	viewer := models.ResponderContext{
		UserID: uuid.New(),
		Role:   models.RoleAmbulance,
	}

	oldest := incidentAt(12.9, 77.5, models.StatusPending, 3*time.Hour)
	middle := incidentAt(12.9, 77.5, models.StatusPending, 2*time.Hour)
	newest := incidentAt(12.9, 77.5, models.StatusPending, time.Hour)

	cards, err := Build(viewer, feedDataFor(oldest, middle, newest), 4)

	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, newest.ID, cards[0].Incident.ID)
	assert.Equal(t, middle.ID, cards[1].Incident.ID)
	assert.Equal(t, oldest.ID, cards[2].Incident.ID)
	for _, card := range cards {
		assert.Nil(t, card.DistanceKm)
	}
}

func TestBuild_AmbulanceOwnershipControls(t *testing.T) {
	viewerID := uuid.New()
	otherID := uuid.New()
	viewer := models.ResponderContext{
		UserID:   viewerID,
		Role:     models.RoleAmbulance,
		Location: &models.LatLng{Lat: 12.97, Lng: 77.59},
	}

	mine := incidentAt(12.97, 77.59, models.StatusAccepted, time.Minute)
	mine.AssignedTo = &viewerID
	theirs := incidentAt(12.98, 77.59, models.StatusAccepted, time.Minute)
	theirs.AssignedTo = &otherID

	cards, err := Build(viewer, feedDataFor(mine, theirs), 4)

	require.NoError(t, err)
	require.Len(t, cards, 2)

	byID := map[uuid.UUID]Card{}
	for _, card := range cards {
		byID[card.Incident.ID] = card
	}
	assert.Equal(t, []Action{ActionResolve}, byID[mine.ID].Actions)
	assert.False(t, byID[mine.ID].Locked)
	assert.Empty(t, byID[theirs.ID].Actions)
	assert.True(t, byID[theirs.ID].Locked)
}

func TestBuild_PoliceSeeEverythingNewestFirst(t *testing.T) {
	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RolePolice}
	assigneeID := uuid.New()

	older := incidentAt(12.9, 77.5, models.StatusPending, 2*time.Hour)
	newer := incidentAt(12.9, 77.5, models.StatusAccepted, time.Hour)
	newer.AssignedTo = &assigneeID

	data := feedDataFor(older, newer)
	data.Locations[assigneeID] = models.LatLng{Lat: 12.95, Lng: 77.55}

	cards, err := Build(viewer, data, 4)

	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, newer.ID, cards[0].Incident.ID)
	assert.Equal(t, []Action{ActionResolve, ActionInvestigate}, cards[0].Actions)
	assert.Contains(t, cards[0].TrackingURL, "maps.google.com")
	assert.Empty(t, cards[1].TrackingURL)
}

func TestBuild_HospitalPreparationNotes(t *testing.T) {
	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RoleHospital}
	assigneeID := uuid.New()

	pending := incidentAt(12.9, 77.5, models.StatusPending, 2*time.Hour)
	accepted := incidentAt(12.9, 77.5, models.StatusAccepted, time.Hour)
	accepted.AssignedTo = &assigneeID

	cards, err := Build(viewer, feedDataFor(pending, accepted), 4)

	require.NoError(t, err)
	require.Len(t, cards, 2)

	byID := map[uuid.UUID]Card{}
	for _, card := range cards {
		byID[card.Incident.ID] = card
	}
	assert.Equal(t, "Awaiting dispatch", byID[pending.ID].PreparationNote)
	assert.Equal(t, "Ambulance en route", byID[accepted.ID].PreparationNote)
	assert.Empty(t, byID[pending.ID].Actions)
}

func TestBuild_UnknownRole(t *testing.T) {
	viewer := models.ResponderContext{UserID: uuid.New(), Role: "janitor"}

	cards, err := Build(viewer, feedDataFor(), 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrRoleUnrecognized)
	assert.Nil(t, cards)
}
