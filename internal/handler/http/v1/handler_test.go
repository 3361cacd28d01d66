package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/resqnow/emergency-dispatch/internal/config"
	"github.com/resqnow/emergency-dispatch/internal/feed"
	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
	"github.com/resqnow/emergency-dispatch/internal/service/mocks"
)

// newTestHandler builds a Handler over mocked services and a test router.
func newTestHandler(t *testing.T) (*Handler, *mocks.MockIncidentService, *mocks.MockAuthService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	incidentMock := mocks.NewMockIncidentService(ctrl)
	authMock := mocks.NewMockAuthService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // silence logs in tests

	cfg := &config.Config{
		FeedLimit:           4,
		FeedRefreshInterval: 30 * time.Second,
	}

	handler := NewHandler(incidentMock, authMock, logger, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, incidentMock, authMock, router
}

// makeRequest performs an HTTP request against the test router.
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// expectSession wires the auth mock to resolve one session token into the
// given responder and returns the matching request headers.
func expectSession(authMock *mocks.MockAuthService, viewer models.ResponderContext) map[string]string {
	authMock.EXPECT().
		CurrentResponder(gomock.Any(), "token-123").
		Return(&viewer, nil).
		Times(1)
	return map[string]string{"Authorization": "Bearer token-123"}
}

// reportForm builds a multipart report submission.
func reportForm(t *testing.T, description string, lat, lng string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("description", description))
	if lat != "" {
		require.NoError(t, mw.WriteField("latitude", lat))
	}
	if lng != "" {
		require.NoError(t, mw.WriteField("longitude", lng))
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "crash.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSubmitReport_Success(t *testing.T) {
	_, incidentMock, _, router := newTestHandler(t)
	reportID := uuid.New()

	incidentMock.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, sub service.SubmitReport) (*models.IncidentReport, []models.DispatchTicket, error) {
			require.NotNil(t, sub.Latitude)
			require.NotNil(t, sub.Longitude)
			assert.Equal(t, "Two-car collision", sub.Description)
			assert.Equal(t, []byte("jpeg-bytes"), sub.Image)
			return &models.IncidentReport{
				ID:        reportID,
				Status:    models.StatusPending,
				Latitude:  *sub.Latitude,
				Longitude: *sub.Longitude,
			}, []models.DispatchTicket{{ResponderID: uuid.New()}}, nil
		}).Times(1)

	body, contentType := reportForm(t, "Two-car collision", "12.9716", "77.5946", true)
	w := makeRequest(router, "POST", "/api/v1/reports", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SubmitReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, reportID, resp.Report.ID)
	assert.Equal(t, "pending", resp.Report.Status)
	assert.Equal(t, 1, resp.TicketCount)
}

func TestSubmitReport_MissingImage(t *testing.T) {
	_, incidentMock, _, router := newTestHandler(t)

	incidentMock.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	body, contentType := reportForm(t, "No photo", "12.97", "77.59", false)
	w := makeRequest(router, "POST", "/api/v1/reports", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image file is required")
}

func TestSubmitReport_NoCoordinates(t *testing.T) {
	_, incidentMock, _, router := newTestHandler(t)

	incidentMock.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		Return(nil, nil, fmt.Errorf("service: %w", service.ErrLocationUnavailable)).
		Times(1)

	body, contentType := reportForm(t, "Where am I", "", "", true)
	w := makeRequest(router, "POST", "/api/v1/reports", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "location unavailable")
}

func TestSubmitReport_UploadFailure(t *testing.T) {
	_, incidentMock, _, router := newTestHandler(t)

	incidentMock.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		Return(nil, nil, fmt.Errorf("service: %w", service.ErrUploadFailed)).
		Times(1)

	body, contentType := reportForm(t, "Bucket down", "12.97", "77.59", true)
	w := makeRequest(router, "POST", "/api/v1/reports", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "image upload failed")
}

func TestLogin_Success(t *testing.T) {
	_, _, authMock, router := newTestHandler(t)

	authMock.EXPECT().
		SignIn(gomock.Any(), "medic@city.example", "correct horse").
		Return(&models.Session{
			Token:     "token-123",
			UserID:    uuid.New(),
			ExpiresAt: time.Now().Add(12 * time.Hour),
		}, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(LoginRequest{Email: "medic@city.example", Password: "correct horse"})
	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "token-123", resp.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, _, authMock, router := newTestHandler(t)

	authMock.EXPECT().
		SignIn(gomock.Any(), "medic@city.example", "wrong").
		Return(nil, fmt.Errorf("service: %w", service.ErrAuthFailed)).
		Times(1)

	bodyBytes, _ := json.Marshal(LoginRequest{Email: "medic@city.example", Password: "wrong"})
	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBuffer(bodyBytes))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_InvalidJSON(t *testing.T) {
	_, _, authMock, router := newTestHandler(t)

	authMock.EXPECT().SignIn(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBufferString(`{"email": "x"`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestFeed_RequiresSession(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)

	authMock.EXPECT().CurrentResponder(gomock.Any(), gomock.Any()).Times(0)
	incidentMock.EXPECT().FeedData(gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/feed", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session token required")
}

func TestFeed_RoleUnrecognized(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)

	authMock.EXPECT().
		CurrentResponder(gomock.Any(), "token-123").
		Return(nil, fmt.Errorf("service: %w", service.ErrRoleUnrecognized)).
		Times(1)
	incidentMock.EXPECT().FeedData(gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/feed", nil, map[string]string{"Authorization": "Bearer token-123"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "role not recognized")
}

func TestGetFeed_Success(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)

	viewer := models.ResponderContext{
		UserID:   uuid.New(),
		Role:     models.RoleAmbulance,
		Location: &models.LatLng{Lat: 12.97, Lng: 77.59},
	}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		FeedData(gomock.Any()).
		Return(&service.FeedData{
			Incidents: []*models.IncidentReport{
				{ID: uuid.New(), Latitude: 12.98, Longitude: 77.59, Status: models.StatusPending, CreatedAt: time.Now()},
			},
			Locations: map[uuid.UUID]models.LatLng{},
			FetchedAt: time.Now(),
		}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/feed", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp FeedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Cards, 1)
	assert.Contains(t, resp.Cards[0].Actions, feed.ActionAccept)
}

func TestClaimIncident_Success(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)
	incidentID := uuid.New()

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RoleAmbulance}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		Claim(gomock.Any(), incidentID, viewer).
		Return(&models.IncidentReport{
			ID:         incidentID,
			Status:     models.StatusAccepted,
			AssignedTo: &viewer.UserID,
		}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/claim", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, viewer.UserID, *resp.AssignedTo)
}

func TestClaimIncident_ConflictRefreshesFeed(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)
	incidentID := uuid.New()
	otherID := uuid.New()

	viewer := models.ResponderContext{
		UserID:   uuid.New(),
		Role:     models.RoleAmbulance,
		Location: &models.LatLng{Lat: 12.97, Lng: 77.59},
	}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		Claim(gomock.Any(), incidentID, viewer).
		Return(nil, fmt.Errorf("service: %w", service.ErrClaimConflict)).
		Times(1)

	// The loser gets a refreshed feed in the same response.
	incidentMock.EXPECT().
		FeedData(gomock.Any()).
		Return(&service.FeedData{
			Incidents: []*models.IncidentReport{
				{ID: incidentID, Latitude: 12.98, Longitude: 77.59, Status: models.StatusAccepted, AssignedTo: &otherID, CreatedAt: time.Now()},
			},
			Locations: map[uuid.UUID]models.LatLng{},
			FetchedAt: time.Now(),
		}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/claim", nil, headers)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp ClaimConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "incident already claimed", resp.Error)
	require.Len(t, resp.Feed.Cards, 1)
	assert.True(t, resp.Feed.Cards[0].Locked)
}

func TestClaimIncident_InvalidID(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)

	authMock.EXPECT().
		CurrentResponder(gomock.Any(), "token-123").
		Return(&models.ResponderContext{UserID: uuid.New(), Role: models.RoleAmbulance}, nil).
		Times(1)
	incidentMock.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/incidents/not-a-uuid/claim", nil, map[string]string{"Authorization": "Bearer token-123"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestResolveIncident_Success(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)
	incidentID := uuid.New()

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RolePolice}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		Resolve(gomock.Any(), incidentID, viewer).
		Return(nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/resolve", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResolveIncident_NotPermitted(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)
	incidentID := uuid.New()

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RoleHospital}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		Resolve(gomock.Any(), incidentID, viewer).
		Return(fmt.Errorf("service: %w", service.ErrNotPermitted)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/resolve", nil, headers)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvestigateIncident_IllegalTransition(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)
	incidentID := uuid.New()

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RolePolice}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		Investigate(gomock.Any(), incidentID, viewer).
		Return(fmt.Errorf("service: %w", service.ErrIllegalTransition)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/investigate", nil, headers)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateLocation_Success(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RoleAmbulance}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().
		UpdateResponderLocation(gomock.Any(), viewer.UserID, models.LatLng{Lat: 12.97, Lng: 77.59}).
		Return(nil).
		Times(1)

	lat, lng := 12.97, 77.59
	bodyBytes, _ := json.Marshal(UpdateLocationRequest{Latitude: &lat, Longitude: &lng})
	w := makeRequest(router, "PUT", "/api/v1/responders/me/location", bytes.NewBuffer(bodyBytes), headers)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateLocation_ValidationError(t *testing.T) {
	_, incidentMock, authMock, router := newTestHandler(t)

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RoleAmbulance}
	headers := expectSession(authMock, viewer)

	incidentMock.EXPECT().UpdateResponderLocation(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Latitude out of range.
	lat, lng := 123.0, 77.59
	bodyBytes, _ := json.Marshal(UpdateLocationRequest{Latitude: &lat, Longitude: &lng})
	w := makeRequest(router, "PUT", "/api/v1/responders/me/location", bytes.NewBuffer(bodyBytes), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_Success(t *testing.T) {
	_, _, authMock, router := newTestHandler(t)

	viewer := models.ResponderContext{UserID: uuid.New(), Role: models.RolePolice}
	headers := expectSession(authMock, viewer)

	authMock.EXPECT().SignOut(gomock.Any(), "token-123").Return(nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/auth/logout", nil, headers)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealthCheck(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
