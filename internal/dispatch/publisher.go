package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/resqnow/emergency-dispatch/internal/models"
)

const (
	ticketQueueKey = "dispatch_tickets"
)

// TicketBatch is the payload queued per reported incident: the incident id
// plus every ticket the ranker selected for it.
type TicketBatch struct {
	IncidentID uuid.UUID               `json:"incident_id"`
	Tickets    []models.DispatchTicket `json:"tickets"`
	QueuedAt   time.Time               `json:"queued_at"`
}

// TicketPublisher queues dispatch ticket batches for asynchronous delivery.
type TicketPublisher interface {
	Publish(ctx context.Context, batch TicketBatch) error
}

// RedisTicketPublisher implements TicketPublisher on a Redis list.
type RedisTicketPublisher struct {
	redisClient *redis.Client
}

// NewRedisTicketPublisher creates a new RedisTicketPublisher.
func NewRedisTicketPublisher(client *redis.Client) *RedisTicketPublisher {
	return &RedisTicketPublisher{
		redisClient: client,
	}
}

// Publish pushes a ticket batch onto the Redis queue.
func (p *RedisTicketPublisher) Publish(ctx context.Context, batch TicketBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket batch: %w", err)
	}

	if err := p.redisClient.LPush(ctx, ticketQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish ticket batch to Redis: %w", err)
	}
	return nil
}
