package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

type SessionStore struct {
	redisClient *redis.Client
}

func NewSessionStore(redisClient *redis.Client) service.SessionStore {
	return &SessionStore{redisClient: redisClient}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Save stores the session under its token; Redis expiry enforces the TTL.
func (s *SessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	val, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redisClient.Set(ctx, sessionKey(session.Token), val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the session for a token, or (nil, nil) when it is unknown or
// expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	val, err := s.redisClient.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session := &models.Session{}
	if err := json.Unmarshal(val, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

// Delete discards a session token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
