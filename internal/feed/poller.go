package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

// Snapshot is one refresh of a responder's feed.
type Snapshot struct {
	Cards     []Card    `json:"cards"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Poller drives a single responder session: a fixed-interval timer that
// re-fetches the open incident set, re-reads the viewer's own position for
// re-ranking, and looks up live locations of assigned responders. The two
// store reads per tick are independent and may be mutually stale.
//
// Stop (or context cancellation) tears the timer and goroutine down; nothing
// keeps ticking for a dead session.
type Poller struct {
	svc       service.IncidentService
	viewer    models.ResponderContext
	interval  time.Duration
	feedLimit int
	logger    *logrus.Logger

	snapshots chan Snapshot
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewPoller creates a poller for one responder session.
func NewPoller(svc service.IncidentService, viewer models.ResponderContext, interval time.Duration, feedLimit int, logger *logrus.Logger) *Poller {
	return &Poller{
		svc:       svc,
		viewer:    viewer,
		interval:  interval,
		feedLimit: feedLimit,
		logger:    logger,
		snapshots: make(chan Snapshot, 1),
		stop:      make(chan struct{}),
	}
}

// Snapshots returns the stream of feed refreshes. It is closed when the
// poller shuts down.
func (p *Poller) Snapshots() <-chan Snapshot {
	return p.snapshots
}

// Start launches the refresh loop. The first refresh happens immediately,
// then every interval until Stop is called or ctx is canceled.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		defer close(p.snapshots)

		log := p.logger.WithFields(logrus.Fields{
			"component": "feed_poller",
			"responder": p.viewer.UserID,
			"role":      p.viewer.Role,
		})
		log.Info("Feed poller started")

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.refresh(ctx, log)
		for {
			select {
			case <-ctx.Done():
				log.Info("Feed poller stopped: context canceled")
				return
			case <-p.stop:
				log.Info("Feed poller stopped")
				return
			case <-ticker.C:
				p.refresh(ctx, log)
			}
		}
	}()
}

// Stop tears the poller down. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}

func (p *Poller) refresh(ctx context.Context, log *logrus.Entry) {
	// Re-read the viewer's own position so a moving ambulance re-ranks its
	// feed. Best-effort: the previous position is kept on failure.
	if loc, err := p.svc.ResponderLocation(ctx, p.viewer.UserID); err == nil && loc != nil {
		p.viewer.Location = loc
	}

	data, err := p.svc.FeedData(ctx)
	if err != nil {
		log.WithError(err).Error("Feed refresh failed")
		return
	}

	cards, err := Build(p.viewer, data, p.feedLimit)
	if err != nil {
		log.WithError(err).Error("Feed projection failed")
		return
	}

	snapshot := Snapshot{Cards: cards, FetchedAt: data.FetchedAt}

	// Keep only the latest snapshot: drop the stale one if the consumer has
	// not caught up.
	select {
	case p.snapshots <- snapshot:
	default:
		select {
		case <-p.snapshots:
		default:
		}
		select {
		case p.snapshots <- snapshot:
		default:
		}
	}
}
