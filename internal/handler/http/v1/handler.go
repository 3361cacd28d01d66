package v1

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/config"
	"github.com/resqnow/emergency-dispatch/internal/feed"
	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

// maxImageBytes caps uploaded report images.
const maxImageBytes = 10 << 20

type Handler struct {
	incidentService service.IncidentService
	authService     service.AuthService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(incidentService service.IncidentService, authService service.AuthService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		authService:     authService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// writeServiceError maps the service failure taxonomy to HTTP statuses.
func writeServiceError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrLocationUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "location unavailable"})
	case errors.Is(err, service.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
	case errors.Is(err, service.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	case errors.Is(err, service.ErrRoleUnrecognized):
		c.JSON(http.StatusForbidden, gin.H{"error": "role not recognized"})
	case errors.Is(err, service.ErrNotPermitted), errors.Is(err, service.ErrNotAssigned):
		c.JSON(http.StatusForbidden, gin.H{"error": "action not permitted"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, service.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "illegal status transition"})
	default:
		log.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// @Summary Submit a public accident report
// @Description Submit an accident report with an image, description and coordinates. No authentication required.
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param description formData string true "What happened"
// @Param latitude formData number true "Latitude in degrees"
// @Param longitude formData number true "Longitude in degrees"
// @Param image formData file true "Incident image"
// @Success 201 {object} SubmitReportResponse
// @Failure 400 {object} map[string]string "Missing coordinates or malformed form"
// @Failure 502 {object} map[string]string "Image upload failed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [post]
func (h *Handler) submitReport(c *gin.Context) {
	log := h.logger.WithField("method", "submitReport")

	sub := service.SubmitReport{
		Description: c.PostForm("description"),
	}
	if lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64); err == nil {
		sub.Latitude = &lat
	}
	if lng, err := strconv.ParseFloat(c.PostForm("longitude"), 64); err == nil {
		sub.Longitude = &lng
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		log.WithError(err).Warn("Report submitted without image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.WithError(err).Warn("Failed to open uploaded image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image file"})
		return
	}
	defer file.Close()

	sub.ImageName = fileHeader.Filename
	sub.Image, err = io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		log.WithError(err).Warn("Failed to read uploaded image")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image file"})
		return
	}

	report, tickets, err := h.incidentService.ReportIncident(c.Request.Context(), sub)
	if err != nil {
		writeServiceError(c, log, err)
		return
	}

	c.JSON(http.StatusCreated, SubmitReportResponse{
		Report:      ModelToReportResponse(report),
		TicketCount: len(tickets),
	})
}

// @Summary Sign in an official
// @Description Exchange email and password for a session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Sign-in credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Bad credentials"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.authService.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		writeServiceError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// @Summary Sign out
// @Description Discard the current session token.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	log := h.logger.WithField("method", "logout")

	token := c.GetHeader("Authorization")
	if len(token) > len("Bearer ") {
		token = token[len("Bearer "):]
	}
	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get the incident feed
// @Description One refresh of the role-conditioned incident feed for the signed-in responder.
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FeedResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /feed [get]
func (h *Handler) getFeed(c *gin.Context) {
	log := h.logger.WithField("method", "getFeed")
	viewer, ok := responderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}

	resp, err := h.buildFeed(c, viewer)
	if err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) buildFeed(c *gin.Context, viewer models.ResponderContext) (FeedResponse, error) {
	data, err := h.incidentService.FeedData(c.Request.Context())
	if err != nil {
		return FeedResponse{}, err
	}
	return BuildFeedResponse(viewer, data, h.cfg.FeedLimit)
}

// @Summary Stream the incident feed
// @Description Server-sent events stream of feed refreshes at the configured interval. The poller is torn down when the client disconnects.
// @Tags Feed
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} feed.Snapshot
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /feed/stream [get]
func (h *Handler) streamFeed(c *gin.Context) {
	viewer, ok := responderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}

	poller := feed.NewPoller(h.incidentService, viewer, h.cfg.FeedRefreshInterval, h.cfg.FeedLimit, h.logger)
	poller.Start(c.Request.Context())
	defer poller.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, open := <-poller.Snapshots():
			if !open {
				return false
			}
			c.SSEvent("feed", snapshot)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// @Summary Claim a pending incident
// @Description Atomically bind the signed-in ambulance to a pending incident. Exactly one concurrent claimer wins; losers receive 409 with a refreshed feed.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 403 {object} map[string]string "Not an ambulance"
// @Failure 409 {object} ClaimConflictResponse "Already claimed"
// @Router /incidents/{id}/claim [post]
func (h *Handler) claimIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "claimIncident").WithField("id", id)

	viewer, ok := responderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}

	report, err := h.incidentService.Claim(c.Request.Context(), id, viewer)
	if err != nil {
		if errors.Is(err, service.ErrClaimConflict) {
			// The corrective follow-up: hand the loser a refreshed feed so
			// its stale view is replaced in the same round-trip.
			resp := ClaimConflictResponse{Error: "incident already claimed"}
			if fresh, feedErr := h.buildFeed(c, viewer); feedErr == nil {
				resp.Feed = fresh
			} else {
				log.WithError(feedErr).Warn("Failed to refresh feed after claim conflict")
			}
			c.JSON(http.StatusConflict, resp)
			return
		}
		writeServiceError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Resolve an incident
// @Description Mark an incident resolved. Police may resolve any non-terminal incident; the assigned ambulance may resolve its own.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 "OK"
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /incidents/{id}/resolve [post]
func (h *Handler) resolveIncident(c *gin.Context) {
	h.transitionIncident(c, "resolveIncident", h.incidentService.Resolve)
}

// @Summary Mark an incident as under investigation
// @Description Police-only transition to the investigating state.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 "OK"
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /incidents/{id}/investigate [post]
func (h *Handler) investigateIncident(c *gin.Context) {
	h.transitionIncident(c, "investigateIncident", h.incidentService.Investigate)
}

func (h *Handler) transitionIncident(c *gin.Context, method string, apply func(ctx context.Context, id uuid.UUID, actor models.ResponderContext) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", method).WithField("id", id)

	viewer, ok := responderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}

	if err := apply(c.Request.Context(), id, viewer); err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.Status(http.StatusOK)
}

// @Summary Update own location
// @Description Record the signed-in responder's current position for ranking and live tracking.
// @Tags Responders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param location body UpdateLocationRequest true "Current position"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /responders/me/location [put]
func (h *Handler) updateLocation(c *gin.Context) {
	var input UpdateLocationRequest
	log := h.logger.WithField("method", "updateLocation")

	viewer, ok := responderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc := models.LatLng{Lat: *input.Latitude, Lng: *input.Longitude}
	if err := h.incidentService.UpdateResponderLocation(c.Request.Context(), viewer.UserID, loc); err != nil {
		writeServiceError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
