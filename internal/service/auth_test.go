package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/resqnow/emergency-dispatch/internal/config"
	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
	"github.com/resqnow/emergency-dispatch/internal/service/mocks"
)

func newTestAuthService(t *testing.T) (service.AuthService, *mocks.MockUserRepository, *mocks.MockResponderRepository, *mocks.MockSessionStore) {
	ctrl := gomock.NewController(t)
	userMock := mocks.NewMockUserRepository(ctrl)
	responderMock := mocks.NewMockResponderRepository(ctrl)
	sessionMock := mocks.NewMockSessionStore(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		SessionTTL: 12 * time.Hour,
	}

	svc := service.NewAuthService(userMock, responderMock, sessionMock, logger, cfg)
	return svc, userMock, responderMock, sessionMock
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignIn_Success(t *testing.T) {
	svc, userMock, _, sessionMock := newTestAuthService(t)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "medic@city.example",
		PasswordHash: hashPassword(t, "correct horse"),
	}

	userMock.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil).Times(1)
	sessionMock.EXPECT().
		Save(ctx, gomock.Any(), 12*time.Hour).
		Do(func(ctx context.Context, session *models.Session, ttl time.Duration) {
			assert.Equal(t, user.ID, session.UserID)
			assert.NotEmpty(t, session.Token)
		}).Return(nil).Times(1)

	session, err := svc.SignIn(ctx, user.Email, "correct horse")

	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))
}

func TestSignIn_UnknownEmail(t *testing.T) {
	svc, userMock, _, sessionMock := newTestAuthService(t)
	ctx := context.Background()

	userMock.EXPECT().GetByEmail(ctx, "nobody@city.example").Return(nil, nil).Times(1)
	sessionMock.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	session, err := svc.SignIn(ctx, "nobody@city.example", "whatever")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuthFailed)
	assert.Nil(t, session)
}

func TestSignIn_BadPassword(t *testing.T) {
	svc, userMock, _, sessionMock := newTestAuthService(t)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "medic@city.example",
		PasswordHash: hashPassword(t, "correct horse"),
	}

	userMock.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil).Times(1)
	sessionMock.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	session, err := svc.SignIn(ctx, user.Email, "wrong horse")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuthFailed)
	assert.Nil(t, session)
}

func TestSignOut_Success(t *testing.T) {
	svc, _, _, sessionMock := newTestAuthService(t)
	ctx := context.Background()

	sessionMock.EXPECT().Delete(ctx, "token-123").Return(nil).Times(1)

	err := svc.SignOut(ctx, "token-123")

	require.NoError(t, err)
}

func TestCurrentResponder_Success(t *testing.T) {
	svc, _, responderMock, sessionMock := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	sessionMock.EXPECT().
		Get(ctx, "token-123").
		Return(&models.Session{Token: "token-123", UserID: userID}, nil).
		Times(1)
	responderMock.EXPECT().
		GetByUserID(ctx, userID).
		Return(&models.Responder{
			UserID:   userID,
			Role:     models.RoleAmbulance,
			Location: &models.LatLng{Lat: 12.97, Lng: 77.59},
		}, nil).
		Times(1)

	actor, err := svc.CurrentResponder(ctx, "token-123")

	require.NoError(t, err)
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, models.RoleAmbulance, actor.Role)
	require.NotNil(t, actor.Location)
}

func TestCurrentResponder_ExpiredSession(t *testing.T) {
	svc, _, _, sessionMock := newTestAuthService(t)
	ctx := context.Background()

	sessionMock.EXPECT().Get(ctx, "stale-token").Return(nil, nil).Times(1)

	actor, err := svc.CurrentResponder(ctx, "stale-token")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAuthFailed)
	assert.Nil(t, actor)
}

func TestCurrentResponder_NoResponderProfile(t *testing.T) {
	svc, _, responderMock, sessionMock := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	sessionMock.EXPECT().
		Get(ctx, "token-123").
		Return(&models.Session{Token: "token-123", UserID: userID}, nil).
		Times(1)
	// No responder row for the user: a profile miss, not a store failure.
	responderMock.EXPECT().
		GetByUserID(ctx, userID).
		Return(nil, nil).
		Times(1)

	actor, err := svc.CurrentResponder(ctx, "token-123")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrRoleUnrecognized)
	assert.Nil(t, actor)
}

func TestCurrentResponder_ProfileStoreFailure(t *testing.T) {
	svc, _, responderMock, sessionMock := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	sessionMock.EXPECT().
		Get(ctx, "token-123").
		Return(&models.Session{Token: "token-123", UserID: userID}, nil).
		Times(1)
	responderMock.EXPECT().
		GetByUserID(ctx, userID).
		Return(nil, fmt.Errorf("connection refused")).
		Times(1)

	actor, err := svc.CurrentResponder(ctx, "token-123")

	// A transient store failure must not read as a permanent role block.
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrRoleUnrecognized)
	assert.ErrorContains(t, err, "could not load responder profile")
	assert.Nil(t, actor)
}

func TestCurrentResponder_UnknownRole(t *testing.T) {
	svc, _, responderMock, sessionMock := newTestAuthService(t)
	ctx := context.Background()
	userID := uuid.New()

	sessionMock.EXPECT().
		Get(ctx, "token-123").
		Return(&models.Session{Token: "token-123", UserID: userID}, nil).
		Times(1)
	responderMock.EXPECT().
		GetByUserID(ctx, userID).
		Return(&models.Responder{UserID: userID, Role: "dispatcher"}, nil).
		Times(1)

	actor, err := svc.CurrentResponder(ctx, "token-123")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrRoleUnrecognized)
	assert.Nil(t, actor)
}
