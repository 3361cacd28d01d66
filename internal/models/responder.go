package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is a responder role. Immutable after the responder row is created.
type Role string

const (
	RoleAmbulance Role = "ambulance"
	RolePolice    Role = "police"
	RoleHospital  Role = "hospital"
)

// Valid reports whether r is one of the known responder roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAmbulance, RolePolice, RoleHospital:
		return true
	}
	return false
}

// LatLng is a pair of coordinates in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Responder is an official unit (ambulance, police or hospital) that can
// appear in dispatch rankings. Location is nil until the unit has reported a
// position at least once.
type Responder struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      Role      `json:"role"`
	Location  *LatLng   `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks a responder row loaded from storage.
func (r *Responder) Validate() error {
	if r.UserID == uuid.Nil {
		return fmt.Errorf("responder: missing user id")
	}
	if !r.Role.Valid() {
		return fmt.Errorf("responder %s: unknown role %q", r.UserID, r.Role)
	}
	if loc := r.Location; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
			return fmt.Errorf("responder %s: coordinates out of range (%f, %f)", r.UserID, loc.Lat, loc.Lng)
		}
	}
	return nil
}

// ResponderContext carries the identity and last known location of the
// responder a request or feed session is acting as. It is threaded explicitly
// into ranking and view building instead of living in ambient state.
type ResponderContext struct {
	UserID   uuid.UUID
	Role     Role
	Location *LatLng
}

// User is an authentication record for an official. Public report submitters
// have no user row.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a signed-in official's server-side session, stored in Redis
// under its token with a TTL.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
