package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IncidentStatus is the lifecycle state of an accident report.
type IncidentStatus string

const (
	StatusPending       IncidentStatus = "pending"
	StatusAccepted      IncidentStatus = "accepted"
	StatusInvestigating IncidentStatus = "investigating"
	StatusResolved      IncidentStatus = "resolved"
)

// Valid reports whether s is one of the known lifecycle states.
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInvestigating, StatusResolved:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s IncidentStatus) Terminal() bool {
	return s == StatusResolved
}

// IncidentReport is a public accident report moving through the dispatch
// lifecycle. AssignedTo is set exactly once, by a successful claim.
type IncidentReport struct {
	ID          uuid.UUID      `json:"id"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Status      IncidentStatus `json:"status"`
	AssignedTo  *uuid.UUID     `json:"assigned_to,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Location returns the report coordinates as a LatLng.
func (r *IncidentReport) Location() LatLng {
	return LatLng{Lat: r.Latitude, Lng: r.Longitude}
}

// Validate checks a row loaded from storage before it is allowed to reach
// ranking or lifecycle logic. Rows that fail are rejected at the repository
// boundary.
func (r *IncidentReport) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("incident report: missing id")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("incident report %s: unknown status %q", r.ID, r.Status)
	}
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("incident report %s: coordinates out of range (%f, %f)", r.ID, r.Latitude, r.Longitude)
	}
	if r.Status == StatusPending && r.AssignedTo != nil {
		return fmt.Errorf("incident report %s: pending but assigned", r.ID)
	}
	if r.Status == StatusAccepted && r.AssignedTo == nil {
		return fmt.Errorf("incident report %s: accepted without assignee", r.ID)
	}
	return nil
}
