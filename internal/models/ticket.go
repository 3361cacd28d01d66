package models

import (
	"time"

	"github.com/google/uuid"
)

// DispatchTicket pairs an incident with a candidate responder selected by the
// ranker. It is a notification target only, never a binding assignment; the
// binding happens through the claim protocol.
type DispatchTicket struct {
	IncidentID  uuid.UUID `json:"incident_id"`
	ResponderID uuid.UUID `json:"responder_id"`
	Role        Role      `json:"role"`
	DistanceKm  float64   `json:"distance_km"`
	CreatedAt   time.Time `json:"created_at"`
}
