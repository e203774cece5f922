package discount

import (
	"context"
	"time"

	"storefront-core/internal/logger"
	"storefront-core/internal/metrics"

	"go.uber.org/zap"
)

// Sweeper deletes expired codes on a fixed interval until its context ends.
type Sweeper struct {
	svc      Service
	interval time.Duration
	now      func() time.Time
	stats    *metrics.Worker
}

func NewSweeper(svc Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		now:      time.Now,
		stats:    metrics.NewWorker("discount_sweeper"),
	}
}

// Stats reports removed codes as Processed and failed sweeps as Failed.
func (s *Sweeper) Stats() metrics.Snapshot {
	return s.stats.Snapshot()
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.L().Info("discount sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			logger.L().Info("discount sweeper stopped", s.Stats().Fields()...)
			return
		}
	}
}

// sweep never returns an error. Failures are logged and retried on the next
// tick.
func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	defer s.stats.ObserveBatch(start)

	n, err := s.svc.SweepExpired(ctx, s.now())
	if err != nil {
		s.stats.Failed()
		logger.L().Error("discount sweep failed", zap.Error(err))
		return
	}
	s.stats.Processed(int(n))
	if n > 0 {
		logger.L().Info("expired discount codes removed", zap.Int64("count", n))
	}
}
