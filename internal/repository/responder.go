package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

// locationCacheTTL bounds how stale a cached live-tracking position can be.
const locationCacheTTL = time.Minute

type ResponderRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	logger      *logrus.Logger
}

func NewResponderRepository(db *pgxpool.Pool, redisClient *redis.Client, logger *logrus.Logger) service.ResponderRepository {
	return &ResponderRepository{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

func buildResponder(userID uuid.UUID, role string, lat, lng *float64, updatedAt time.Time) (*models.Responder, error) {
	responder := &models.Responder{
		UserID:    userID,
		Role:      models.Role(role),
		UpdatedAt: updatedAt,
	}
	if lat != nil && lng != nil {
		responder.Location = &models.LatLng{Lat: *lat, Lng: *lng}
	}
	if err := responder.Validate(); err != nil {
		return nil, err
	}
	return responder, nil
}

// GetByUserID returns a responder unit by its user id, or (nil, nil) when no
// responder row exists.
func (r *ResponderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Responder, error) {
	query := `
		SELECT user_id, role, latitude, longitude, updated_at
		FROM responders
		WHERE user_id = $1;
	`
	var (
		id        uuid.UUID
		role      string
		lat, lng  *float64
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(&id, &role, &lat, &lng, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get responder by user id: %w", err)
	}
	return buildResponder(id, role, lat, lng, updatedAt)
}

// ListAll returns the full responder pool for outbound ranking. Malformed
// rows are quarantined.
func (r *ResponderRepository) ListAll(ctx context.Context) ([]*models.Responder, error) {
	query := `
		SELECT user_id, role, latitude, longitude, updated_at
		FROM responders
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list responders: %w", err)
	}
	defer rows.Close()

	responders := make([]*models.Responder, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			role      string
			lat, lng  *float64
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &role, &lat, &lng, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan responder row: %w", err)
		}
		responder, err := buildResponder(id, role, lat, lng, updatedAt)
		if err != nil {
			r.logger.WithError(err).Warn("Quarantined malformed responder row")
			continue
		}
		responders = append(responders, responder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return responders, nil
}

func locationCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("responder_loc:%s", userID.String())
}

// UpdateLocation persists the responder position and writes through to the
// tracking cache.
func (r *ResponderRepository) UpdateLocation(ctx context.Context, userID uuid.UUID, loc models.LatLng) error {
	query := `
		UPDATE responders SET
			latitude = $2,
			longitude = $3,
			updated_at = NOW()
		WHERE user_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, userID, loc.Lat, loc.Lng)
	if err != nil {
		return fmt.Errorf("failed to update responder location: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("responder with user id %s not found for location update", userID)
	}

	if err := r.setLocationCache(ctx, userID, loc); err != nil {
		// Cache is an optimization for tracking reads; the DB write stands.
		r.logger.WithError(err).WithField("responder", userID).Warn("Failed to cache responder location")
	}
	return nil
}

// GetLocation returns the responder's last known position, preferring the
// tracking cache. A responder that never reported a position yields nil.
func (r *ResponderRepository) GetLocation(ctx context.Context, userID uuid.UUID) (*models.LatLng, error) {
	val, err := r.redisClient.Get(ctx, locationCacheKey(userID)).Bytes()
	if err == nil {
		loc := &models.LatLng{}
		if err := json.Unmarshal(val, loc); err == nil {
			return loc, nil
		}
		r.logger.WithField("responder", userID).Warn("Discarded undecodable cached location")
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get responder location from cache: %w", err)
	}

	responder, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if responder == nil {
		return nil, fmt.Errorf("responder with user id %s not found", userID)
	}
	if responder.Location == nil {
		return nil, nil
	}
	if err := r.setLocationCache(ctx, userID, *responder.Location); err != nil {
		r.logger.WithError(err).WithField("responder", userID).Warn("Failed to cache responder location")
	}
	return responder.Location, nil
}

func (r *ResponderRepository) setLocationCache(ctx context.Context, userID uuid.UUID, loc models.LatLng) error {
	val, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to marshal responder location for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, locationCacheKey(userID), val, locationCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set responder location in cache: %w", err)
	}
	return nil
}
