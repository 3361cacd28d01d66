package feed

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/resqnow/emergency-dispatch/internal/dispatch"
	"github.com/resqnow/emergency-dispatch/internal/geo"
	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

// Action is a status control a card exposes to its viewer.
type Action string

const (
	ActionAccept      Action = "accept"
	ActionResolve     Action = "resolve"
	ActionInvestigate Action = "investigate"
)

// Card is one incident as a given responder sees it: the report itself plus
// the controls and tracking links their role exposes.
type Card struct {
	Incident        *models.IncidentReport `json:"incident"`
	DistanceKm      *float64               `json:"distance_km,omitempty"`
	Actions         []Action               `json:"actions,omitempty"`
	Locked          bool                   `json:"locked,omitempty"`
	PreparationNote string                 `json:"preparation_note,omitempty"`
	MapURL          string                 `json:"map_url"`
	TrackingURL     string                 `json:"tracking_url,omitempty"`
}

func mapURL(loc models.LatLng) string {
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", loc.Lat, loc.Lng)
}

// trackingURL returns a live map link to the assigned responder, or "" when
// the incident has no assignee or the assignee has no known position.
func trackingURL(inc *models.IncidentReport, locations map[uuid.UUID]models.LatLng) string {
	if inc.AssignedTo == nil {
		return ""
	}
	loc, ok := locations[*inc.AssignedTo]
	if !ok {
		return ""
	}
	return mapURL(loc)
}

// Build projects a feed refresh into role-conditioned cards. It is pure: all
// state comes in through the viewer context and the feed data.
func Build(viewer models.ResponderContext, data *service.FeedData, feedLimit int) ([]Card, error) {
	switch viewer.Role {
	case models.RoleAmbulance:
		return buildAmbulance(viewer, data, feedLimit), nil
	case models.RolePolice:
		return buildPolice(data), nil
	case models.RoleHospital:
		return buildHospital(data), nil
	}
	return nil, fmt.Errorf("view: %w: %q", service.ErrRoleUnrecognized, viewer.Role)
}

func buildAmbulance(viewer models.ResponderContext, data *service.FeedData, feedLimit int) []Card {
	ranked := dispatch.RankFeed(viewer.Location, data.Incidents, feedLimit)

	cards := make([]Card, 0, len(ranked))
	for _, inc := range ranked {
		card := Card{
			Incident: inc,
			MapURL:   mapURL(inc.Location()),
		}
		if viewer.Location != nil {
			d := geo.DistanceKm(*viewer.Location, inc.Location())
			card.DistanceKm = &d
		}
		switch {
		case inc.Status == models.StatusPending:
			card.Actions = []Action{ActionAccept}
		case inc.AssignedTo != nil && *inc.AssignedTo == viewer.UserID:
			card.Actions = []Action{ActionResolve}
		default:
			card.Locked = true
		}
		cards = append(cards, card)
	}
	return cards
}

func buildPolice(data *service.FeedData) []Card {
	ordered := newestFirst(data.Incidents)

	cards := make([]Card, 0, len(ordered))
	for _, inc := range ordered {
		cards = append(cards, Card{
			Incident:    inc,
			Actions:     []Action{ActionResolve, ActionInvestigate},
			MapURL:      mapURL(inc.Location()),
			TrackingURL: trackingURL(inc, data.Locations),
		})
	}
	return cards
}

func buildHospital(data *service.FeedData) []Card {
	ordered := newestFirst(data.Incidents)

	cards := make([]Card, 0, len(ordered))
	for _, inc := range ordered {
		note := "Ambulance en route"
		if inc.Status == models.StatusPending {
			note = "Awaiting dispatch"
		}
		cards = append(cards, Card{
			Incident:        inc,
			PreparationNote: note,
			MapURL:          mapURL(inc.Location()),
			TrackingURL:     trackingURL(inc, data.Locations),
		})
	}
	return cards
}

func newestFirst(incidents []*models.IncidentReport) []*models.IncidentReport {
	ordered := make([]*models.IncidentReport, len(incidents))
	copy(ordered, incidents)
	return dispatch.SortByNewest(ordered)
}
