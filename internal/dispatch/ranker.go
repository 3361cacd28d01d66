package dispatch

import (
	"sort"
	"time"

	"github.com/resqnow/emergency-dispatch/internal/geo"
	"github.com/resqnow/emergency-dispatch/internal/models"
)

// Quotas caps how many responders of each role an outbound dispatch selects.
type Quotas struct {
	Hospital  int
	Police    int
	Ambulance int
}

// DefaultQuotas returns the production selection policy: the nearest hospital,
// the nearest police unit and up to three nearest ambulances.
func DefaultQuotas() Quotas {
	return Quotas{Hospital: 1, Police: 1, Ambulance: 3}
}

func (q Quotas) forRole(role models.Role) int {
	switch role {
	case models.RoleHospital:
		return q.Hospital
	case models.RolePolice:
		return q.Police
	case models.RoleAmbulance:
		return q.Ambulance
	}
	return 0
}

// RankForDispatch selects the notification set for a new incident: responders
// without a known location are excluded, the rest are sorted ascending by
// distance to the incident (ties keep original pool order), and per-role
// quotas are applied. Roles with no located candidate are simply absent.
//
// The result is a set of transient dispatch tickets, not assignments.
func RankForDispatch(incident *models.IncidentReport, pool []*models.Responder, quotas Quotas) []models.DispatchTicket {
	type candidate struct {
		responder *models.Responder
		distance  float64
	}

	candidates := make([]candidate, 0, len(pool))
	for _, r := range pool {
		if r.Location == nil {
			continue
		}
		candidates = append(candidates, candidate{
			responder: r,
			distance:  geo.DistanceKm(incident.Location(), *r.Location),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	now := time.Now().UTC()
	taken := map[models.Role]int{}
	tickets := make([]models.DispatchTicket, 0, quotas.Hospital+quotas.Police+quotas.Ambulance)
	for _, c := range candidates {
		role := c.responder.Role
		if taken[role] >= quotas.forRole(role) {
			continue
		}
		taken[role]++
		tickets = append(tickets, models.DispatchTicket{
			IncidentID:  incident.ID,
			ResponderID: c.responder.UserID,
			Role:        role,
			DistanceKm:  c.distance,
			CreatedAt:   now,
		})
	}
	return tickets
}

// RankFeed orders incidents for an ambulance feed: nearest first, truncated to
// limit, when the viewer location is known; reverse-chronological otherwise.
// The input slice is not modified.
func RankFeed(viewerLoc *models.LatLng, incidents []*models.IncidentReport, limit int) []*models.IncidentReport {
	ranked := make([]*models.IncidentReport, len(incidents))
	copy(ranked, incidents)

	if viewerLoc == nil {
		return SortByNewest(ranked)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return geo.DistanceKm(*viewerLoc, ranked[i].Location()) < geo.DistanceKm(*viewerLoc, ranked[j].Location())
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// SortByNewest sorts incidents reverse-chronologically by creation time,
// in place, and returns the slice.
func SortByNewest(incidents []*models.IncidentReport) []*models.IncidentReport {
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
	return incidents
}
