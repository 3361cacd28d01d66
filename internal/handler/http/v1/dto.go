package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/resqnow/emergency-dispatch/internal/feed"
)

// LoginRequest carries official sign-in credentials.
// @Description Official sign-in credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the opened session token.
// @Description Opened session token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateLocationRequest carries a responder position update.
// @Description Responder position update
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// ReportResponse describes a created or claimed accident report.
// @Description Accident report state
type ReportResponse struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Status      string     `json:"status"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SubmitReportResponse is the public submission result: the pending report
// plus how many dispatch tickets were queued for it.
// @Description Public submission result
type SubmitReportResponse struct {
	Report      ReportResponse `json:"report"`
	TicketCount int            `json:"ticket_count"`
}

// FeedResponse is one role-conditioned refresh of the incident feed.
// @Description Role-conditioned incident feed
type FeedResponse struct {
	Cards     []feed.Card `json:"cards"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// ClaimConflictResponse signals a lost claim race together with a refreshed
// feed so the caller can immediately retarget.
// @Description Lost claim race plus refreshed feed
type ClaimConflictResponse struct {
	Error string       `json:"error"`
	Feed  FeedResponse `json:"feed"`
}
