package outbox

import (
	"context"
	"time"

	"storefront-core/internal/logger"
	"storefront-core/internal/metrics"

	"go.uber.org/zap"
)

const defaultBatchSize = 100

// breaker is implemented by publishers that can refuse writes up front.
type breaker interface {
	Open() bool
}

// Poller publishes unpublished outbox events on a fixed interval until its
// context ends. An event is marked published only after the publisher
// accepted it, so delivery is at least once.
type Poller struct {
	repo      Repository
	publisher Publisher
	interval  time.Duration
	batchSize int
	stats     *metrics.Worker
}

// Stats reports published events as Processed, and publish or mark
// failures as Failed.
func (p *Poller) Stats() metrics.Snapshot {
	return p.stats.Snapshot()
}

func NewPoller(repo Repository, publisher Publisher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		stats:     metrics.NewWorker("outbox_poller"),
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger.L().Info("outbox poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ticker.C:
			p.processUnpublished(ctx)
		case <-ctx.Done():
			logger.L().Info("outbox poller stopped", p.Stats().Fields()...)
			return
		}
	}
}

// processUnpublished returns how many events were published.
func (p *Poller) processUnpublished(ctx context.Context) int {
	log := logger.L().With(zap.String("component", "outbox_poller"))
	if b, ok := p.publisher.(breaker); ok && b.Open() {
		log.Debug("publisher circuit open, skipping batch")
		return 0
	}

	start := time.Now()

	events, err := p.repo.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		log.Error("failed to fetch events", zap.Error(err))
		p.stats.Failed()
		return 0
	}

	published := 0
	for _, e := range events {
		if err := p.publisher.Publish(ctx, e); err != nil {
			log.Warn("failed to publish event",
				zap.String("event_id", e.ID.String()),
				zap.String("event_type", e.EventType),
				zap.Error(err),
			)
			p.stats.Failed()
			// Keep per-aggregate order: stop at the first failure.
			break
		}
		if err := p.repo.MarkPublished(ctx, e.ID); err != nil {
			log.Error("failed to mark event published",
				zap.String("event_id", e.ID.String()),
				zap.Error(err),
			)
			p.stats.Failed()
			break
		}
		published++
	}

	p.stats.Processed(published)
	took := p.stats.ObserveBatch(start)
	if published > 0 {
		log.Debug("outbox events published",
			zap.Int("count", published),
			zap.Duration("duration", took),
			zap.Uint64("total_published", p.stats.Snapshot().Processed),
		)
	}
	return published
}
