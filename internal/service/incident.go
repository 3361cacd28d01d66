package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/config"
	"github.com/resqnow/emergency-dispatch/internal/dispatch"
	"github.com/resqnow/emergency-dispatch/internal/models"
)

// IncidentRepository defines the storage contract for accident reports. The
// three conditional writes (Claim, SetStatus, SetStatusByAssignee) must be
// single atomic statements that report the number of affected rows; the
// service never issues a read-then-write for them. GetByID reports an unknown
// id by wrapping ErrNotFound; any other error is a store failure.
type IncidentRepository interface {
	Create(ctx context.Context, report *models.IncidentReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error)
	ListOpen(ctx context.Context) ([]*models.IncidentReport, error)
	Claim(ctx context.Context, incidentID, responderID uuid.UUID) (int64, error)
	SetStatus(ctx context.Context, incidentID uuid.UUID, status models.IncidentStatus) (int64, error)
	SetStatusByAssignee(ctx context.Context, incidentID, responderID uuid.UUID, status models.IncidentStatus) (int64, error)
}

// ResponderRepository defines the storage contract for responder units.
// GetByUserID returns (nil, nil) when no responder row exists for the user.
type ResponderRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Responder, error)
	ListAll(ctx context.Context) ([]*models.Responder, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, loc models.LatLng) error
	GetLocation(ctx context.Context, userID uuid.UUID) (*models.LatLng, error)
}

// BlobStore persists report images before the incident row is inserted.
type BlobStore interface {
	Upload(bucket, path string, data []byte) error
	PublicURL(bucket, path string) string
}

// SubmitReport is a public accident submission. Coordinates are pointers so a
// missing geolocation read can be told apart from (0, 0).
type SubmitReport struct {
	Description string
	Latitude    *float64
	Longitude   *float64
	ImageName   string
	Image       []byte
}

// FeedData is one refresh of the dispatch feed: every non-resolved incident
// plus an independently fetched live location for each assigned responder.
// The two reads are not transactionally consistent; a tracked location may be
// from a slightly different moment than the incident snapshot.
type FeedData struct {
	Incidents []*models.IncidentReport
	Locations map[uuid.UUID]models.LatLng
	FetchedAt time.Time
}

// IncidentService is the business logic for reporting, claiming and moving
// incidents through their lifecycle.
type IncidentService interface {
	ReportIncident(ctx context.Context, sub SubmitReport) (*models.IncidentReport, []models.DispatchTicket, error)
	Claim(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext) (*models.IncidentReport, error)
	Resolve(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext) error
	Investigate(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext) error
	FeedData(ctx context.Context) (*FeedData, error)
	UpdateResponderLocation(ctx context.Context, userID uuid.UUID, loc models.LatLng) error
	ResponderLocation(ctx context.Context, userID uuid.UUID) (*models.LatLng, error)
}

type incidentService struct {
	incidents  IncidentRepository
	responders ResponderRepository
	blobs      BlobStore
	publisher  dispatch.TicketPublisher
	logger     *logrus.Logger
	cfg        *config.Config
}

func NewIncidentService(
	incidents IncidentRepository,
	responders ResponderRepository,
	blobs BlobStore,
	publisher dispatch.TicketPublisher,
	logger *logrus.Logger,
	cfg *config.Config,
) IncidentService {
	return &incidentService{
		incidents:  incidents,
		responders: responders,
		blobs:      blobs,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

func (s *incidentService) quotas() dispatch.Quotas {
	return dispatch.Quotas{
		Hospital:  s.cfg.HospitalQuota,
		Police:    s.cfg.PoliceQuota,
		Ambulance: s.cfg.AmbulanceQuota,
	}
}

// ReportIncident runs the public submission flow: upload the image, insert
// the pending report, then rank the responder pool and queue the dispatch
// tickets. Upload failure aborts before any row exists; a failed ticket
// publication leaves a valid zero-ticket incident.
func (s *incidentService) ReportIncident(ctx context.Context, sub SubmitReport) (*models.IncidentReport, []models.DispatchTicket, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ReportIncident",
	})
	log.Info("Processing public accident report")

	if sub.Latitude == nil || sub.Longitude == nil {
		log.Warn("Report rejected: no coordinates")
		return nil, nil, fmt.Errorf("service: %w", ErrLocationUnavailable)
	}
	if len(sub.Image) == 0 {
		log.Warn("Report rejected: no image")
		return nil, nil, fmt.Errorf("service: %w: empty image", ErrUploadFailed)
	}

	blobPath := fmt.Sprintf("public/%d-%s", time.Now().UnixMilli(), path.Base(sub.ImageName))
	if err := s.blobs.Upload(s.cfg.ImageBucket, blobPath, sub.Image); err != nil {
		log.WithError(err).Error("Failed to upload report image")
		return nil, nil, fmt.Errorf("service: %w: %w", ErrUploadFailed, err)
	}

	report := &models.IncidentReport{
		Description: sub.Description,
		ImageURL:    s.blobs.PublicURL(s.cfg.ImageBucket, blobPath),
		Latitude:    *sub.Latitude,
		Longitude:   *sub.Longitude,
		Status:      models.StatusPending,
	}
	if err := s.incidents.Create(ctx, report); err != nil {
		log.WithError(err).Error("Failed to create incident report in repository")
		return nil, nil, fmt.Errorf("service: could not create incident report: %w", err)
	}
	log = log.WithField("incident_id", report.ID)
	log.Info("Incident report created")

	tickets := s.dispatchTickets(ctx, report, log)
	return report, tickets, nil
}

// dispatchTickets ranks the responder pool and queues the resulting tickets.
// Errors here never fail the submission: an incident with zero tickets is a
// valid outcome.
func (s *incidentService) dispatchTickets(ctx context.Context, report *models.IncidentReport, log *logrus.Entry) []models.DispatchTicket {
	pool, err := s.responders.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load responder pool; incident remains without tickets")
		return nil
	}

	tickets := dispatch.RankForDispatch(report, pool, s.quotas())
	if len(tickets) == 0 {
		log.Warn("No located responders available for dispatch")
		return nil
	}

	batch := dispatch.TicketBatch{
		IncidentID: report.ID,
		Tickets:    tickets,
		QueuedAt:   time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, batch); err != nil {
		log.WithError(err).Error("Failed to queue dispatch tickets; incident remains without tickets")
		return nil
	}

	log.WithField("tickets", len(tickets)).Info("Dispatch tickets queued")
	return tickets
}

// Claim binds the incident to the actor through a single conditional write.
// Zero affected rows means another responder won the race and the caller gets
// ErrClaimConflict; there is no internal retry.
func (s *incidentService) Claim(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext) (*models.IncidentReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "Claim",
		"incident_id": incidentID,
		"responder":   actor.UserID,
	})
	log.Info("Attempting to claim incident")

	if actor.Role != models.RoleAmbulance {
		log.Warn("Claim rejected: actor is not an ambulance")
		return nil, fmt.Errorf("service: %w", ErrNotPermitted)
	}

	affected, err := s.incidents.Claim(ctx, incidentID, actor.UserID)
	if err != nil {
		log.WithError(err).Error("Claim write failed")
		return nil, fmt.Errorf("service: could not claim incident: %w", err)
	}
	if affected == 0 {
		log.Info("Claim lost: incident no longer pending")
		return nil, fmt.Errorf("service: %w", ErrClaimConflict)
	}

	report, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Error("Failed to reload claimed incident")
		return nil, fmt.Errorf("service: could not reload claimed incident: %w", err)
	}
	log.Info("Incident claimed")
	return report, nil
}

// Resolve marks the incident resolved. Police may resolve from any
// non-terminal state regardless of assignment; the assigned ambulance may
// resolve its own incident only.
func (s *incidentService) Resolve(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext) error {
	return s.transition(ctx, incidentID, actor, models.StatusResolved)
}

// Investigate marks the incident investigating. Police only.
func (s *incidentService) Investigate(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext) error {
	if actor.Role != models.RolePolice {
		return fmt.Errorf("service: %w", ErrNotPermitted)
	}
	return s.transition(ctx, incidentID, actor, models.StatusInvestigating)
}

func (s *incidentService) transition(ctx context.Context, incidentID uuid.UUID, actor models.ResponderContext, status models.IncidentStatus) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "transition",
		"incident_id": incidentID,
		"responder":   actor.UserID,
		"status":      status,
	})
	log.Info("Attempting status transition")

	var (
		affected int64
		err      error
	)
	switch actor.Role {
	case models.RolePolice:
		// Police authority overrides ambulance ownership.
		affected, err = s.incidents.SetStatus(ctx, incidentID, status)
	case models.RoleAmbulance:
		affected, err = s.incidents.SetStatusByAssignee(ctx, incidentID, actor.UserID, status)
	default:
		log.Warn("Transition rejected: role has no status controls")
		return fmt.Errorf("service: %w", ErrNotPermitted)
	}
	if err != nil {
		log.WithError(err).Error("Status write failed")
		return fmt.Errorf("service: could not update incident status: %w", err)
	}
	if affected == 1 {
		log.Info("Status transition applied")
		return nil
	}

	// The guarded write touched nothing; classify why so the caller gets a
	// distinct failure instead of a silent no-op.
	report, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("Transition rejected: incident does not exist")
			return fmt.Errorf("service: %w: incident %s", ErrNotFound, incidentID)
		}
		log.WithError(err).Error("Failed to classify rejected transition")
		return fmt.Errorf("service: could not classify rejected transition: %w", err)
	}
	if report.Status.Terminal() {
		log.Warn("Transition rejected: incident is terminal")
		return fmt.Errorf("service: %w: incident %s is %s", ErrIllegalTransition, incidentID, report.Status)
	}
	if actor.Role == models.RoleAmbulance {
		log.Warn("Transition rejected: actor is not the assignee")
		return fmt.Errorf("service: %w", ErrNotAssigned)
	}
	return fmt.Errorf("service: %w", ErrIllegalTransition)
}

// FeedData re-fetches every non-resolved incident and, independently, the
// live location of each assigned responder on an accepted incident.
func (s *incidentService) FeedData(ctx context.Context) (*FeedData, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "FeedData",
	})

	incidents, err := s.incidents.ListOpen(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list open incidents")
		return nil, fmt.Errorf("service: could not list open incidents: %w", err)
	}

	locations := make(map[uuid.UUID]models.LatLng)
	for _, inc := range incidents {
		if inc.Status != models.StatusAccepted || inc.AssignedTo == nil {
			continue
		}
		id := *inc.AssignedTo
		if _, ok := locations[id]; ok {
			continue
		}
		loc, err := s.responders.GetLocation(ctx, id)
		if err != nil {
			// Tracking is best-effort; the feed itself stays usable.
			log.WithError(err).WithField("responder", id).Warn("Failed to fetch assigned responder location")
			continue
		}
		if loc != nil {
			locations[id] = *loc
		}
	}

	log.WithField("count", len(incidents)).Debug("Feed data refreshed")
	return &FeedData{
		Incidents: incidents,
		Locations: locations,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// UpdateResponderLocation records a responder's current position.
func (s *incidentService) UpdateResponderLocation(ctx context.Context, userID uuid.UUID, loc models.LatLng) error {
	if err := s.responders.UpdateLocation(ctx, userID, loc); err != nil {
		s.logger.WithError(err).WithField("responder", userID).Error("Failed to update responder location")
		return fmt.Errorf("service: could not update responder location: %w", err)
	}
	return nil
}

// ResponderLocation returns a responder's last known position, or nil if the
// unit has never reported one.
func (s *incidentService) ResponderLocation(ctx context.Context, userID uuid.UUID) (*models.LatLng, error) {
	loc, err := s.responders.GetLocation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get responder location: %w", err)
	}
	return loc, nil
}
