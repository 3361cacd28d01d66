package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/config"
)

// NotifyWorker drains the dispatch ticket queue and delivers each batch as a
// signed webhook to the responder notification endpoint. Delivery is
// best-effort: responders discover incidents through polling regardless.
type NotifyWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewNotifyWorker creates a new NotifyWorker.
func NewNotifyWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *NotifyWorker {
	return &NotifyWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.DispatchTimeout,
		},
	}
}

// Start launches the queue-draining goroutine. It exits when ctx is canceled.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info("Starting dispatch notify worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping dispatch notify worker.")
				return
			default:
				result, err := w.redisClient.BRPop(ctx, 0, ticketQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop ticket batch from Redis")
					time.Sleep(w.cfg.DispatchTimeout)
					continue
				}

				payload := result[1]
				var batch TicketBatch
				if err := json.Unmarshal([]byte(payload), &batch); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal ticket batch from Redis")
					continue
				}

				w.deliverBatch(ctx, batch, payload)
			}
		}
	}()
}

func (w *NotifyWorker) deliverBatch(ctx context.Context, batch TicketBatch, rawPayload string) {
	log := w.logger.WithField("incident_id", batch.IncidentID).WithField("tickets", len(batch.Tickets))
	log.Debug("Delivering dispatch ticket batch...")

	if w.cfg.DispatchWebhookURL == "" {
		log.Warn("Dispatch webhook URL is not configured. Skipping ticket delivery.")
		return
	}

	maxRetries := w.cfg.DispatchMaxRetries
	baseDelay := w.cfg.DispatchBaseDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", w.cfg.DispatchWebhookURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Errorf("Failed to create dispatch request. Retries left: %d", maxRetries-1-i)
			continue
		}

		req.Header.Set("Content-Type", "application/json")

		if w.cfg.DispatchSecret != "" {
			signature := generateHMACSHA256(rawPayload, w.cfg.DispatchSecret)
			req.Header.Set("X-Dispatch-Signature", signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send dispatch webhook. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
			time.Sleep(baseDelay)
			baseDelay *= 2
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Info("Dispatch tickets delivered successfully.")
			return
		}
		log.Warnf("Dispatch delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, maxRetries-1-i)
		time.Sleep(baseDelay)
		baseDelay *= 2
	}

	log.Errorf("Failed to deliver dispatch tickets after %d retries.", maxRetries)
}

// generateHMACSHA256 signs the payload with the shared dispatch secret.
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
