package service

import "errors"

// Sentinel errors for the dispatch failure taxonomy. Handlers map these to
// HTTP statuses with errors.Is; everything else is a generic store failure.
var (
	// ErrAuthFailed covers bad credentials and missing/expired sessions.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRoleUnrecognized means identity resolved but no responder role is
	// attached to it. Blocks the dashboard entirely.
	ErrRoleUnrecognized = errors.New("responder role not recognized")

	// ErrLocationUnavailable blocks a submission whose coordinates could not
	// be obtained.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrUploadFailed aborts a submission before any incident row is created.
	ErrUploadFailed = errors.New("image upload failed")

	// ErrClaimConflict means the conditional claim write affected zero rows:
	// another responder already owns the incident. The caller must discard
	// its stale view and refresh.
	ErrClaimConflict = errors.New("incident already claimed")

	// ErrIllegalTransition is any status change the lifecycle forbids. The
	// stored state is left untouched.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrNotAssigned means an ambulance tried to resolve an incident owned
	// by a different responder.
	ErrNotAssigned = errors.New("incident assigned to another responder")

	// ErrNotPermitted means the actor's role does not expose this action.
	ErrNotPermitted = errors.New("action not permitted for role")

	// ErrNotFound is returned for unknown incident or responder ids.
	ErrNotFound = errors.New("not found")
)
