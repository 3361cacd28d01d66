package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/resqnow/emergency-dispatch/internal/config"
	"github.com/resqnow/emergency-dispatch/internal/models"
)

// UserRepository defines the storage contract for official accounts.
// GetByEmail returns (nil, nil) when no account exists.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore keeps signed-in sessions with a TTL. Get returns (nil, nil)
// for unknown or expired tokens.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthService is the identity provider for officials: password sign-in,
// session teardown, and resolution of the acting responder for a request.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentResponder(ctx context.Context, token string) (*models.ResponderContext, error)
}

type authService struct {
	users      UserRepository
	responders ResponderRepository
	sessions   SessionStore
	logger     *logrus.Logger
	cfg        *config.Config
}

func NewAuthService(
	users UserRepository,
	responders ResponderRepository,
	sessions SessionStore,
	logger *logrus.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:      users,
		responders: responders,
		sessions:   sessions,
		logger:     logger,
		cfg:        cfg,
	}
}

// SignIn verifies the credentials and opens a session. Bad email and bad
// password are indistinguishable to the caller.
func (s *authService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignIn",
		"email":   email,
	})

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		log.WithError(err).Error("Failed to look up user")
		return nil, fmt.Errorf("service: could not look up user: %w", err)
	}
	if user == nil {
		log.Warn("Sign-in rejected: unknown email")
		return nil, fmt.Errorf("service: %w", ErrAuthFailed)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn("Sign-in rejected: bad password")
		return nil, fmt.Errorf("service: %w", ErrAuthFailed)
	}

	now := time.Now().UTC()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		log.WithError(err).Error("Failed to save session")
		return nil, fmt.Errorf("service: could not save session: %w", err)
	}

	log.WithField("user_id", user.ID).Info("Official signed in")
	return session, nil
}

// SignOut discards the session. Unknown tokens are not an error.
func (s *authService) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("service: could not delete session: %w", err)
	}
	return nil
}

// CurrentResponder resolves the acting responder for a session token,
// including their last known location. A valid session without a responder
// row (or with an unknown role) blocks with ErrRoleUnrecognized.
func (s *authService) CurrentResponder(ctx context.Context, token string) (*models.ResponderContext, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("service: could not load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("service: %w", ErrAuthFailed)
	}

	responder, err := s.responders.GetByUserID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load responder profile: %w", err)
	}
	if responder == nil {
		return nil, fmt.Errorf("service: %w: user %s has no responder profile", ErrRoleUnrecognized, session.UserID)
	}
	if !responder.Role.Valid() {
		return nil, fmt.Errorf("service: %w: %q", ErrRoleUnrecognized, responder.Role)
	}

	return &models.ResponderContext{
		UserID:   responder.UserID,
		Role:     responder.Role,
		Location: responder.Location,
	}, nil
}
