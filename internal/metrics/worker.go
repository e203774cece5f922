package metrics

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Worker records what a background worker did across its batches: items
// handled, failures, and how long the batches took. Safe for concurrent use.
type Worker struct {
	name      string
	processed atomic.Uint64
	failed    atomic.Uint64
	batches   atomic.Uint64
	lastBatch atomic.Int64
	maxBatch  atomic.Int64
}

func NewWorker(name string) *Worker {
	return &Worker{name: name}
}

// Processed adds n successfully handled items. Non-positive n is ignored.
func (w *Worker) Processed(n int) {
	if n > 0 {
		w.processed.Add(uint64(n))
	}
}

func (w *Worker) Failed() {
	w.failed.Add(1)
}

// ObserveBatch records one finished batch that started at start and returns
// its duration.
func (w *Worker) ObserveBatch(start time.Time) time.Duration {
	d := time.Since(start)
	w.batches.Add(1)
	w.lastBatch.Store(int64(d))
	for {
		cur := w.maxBatch.Load()
		if int64(d) <= cur || w.maxBatch.CompareAndSwap(cur, int64(d)) {
			break
		}
	}
	return d
}

// Snapshot is a point-in-time copy of a Worker's totals.
type Snapshot struct {
	Name      string
	Processed uint64
	Failed    uint64
	Batches   uint64
	LastBatch time.Duration
	MaxBatch  time.Duration
}

func (w *Worker) Snapshot() Snapshot {
	return Snapshot{
		Name:      w.name,
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
		Batches:   w.batches.Load(),
		LastBatch: time.Duration(w.lastBatch.Load()),
		MaxBatch:  time.Duration(w.maxBatch.Load()),
	}
}

// Fields renders the snapshot for a log line.
func (s Snapshot) Fields() []zap.Field {
	return []zap.Field{
		zap.String("worker", s.Name),
		zap.Uint64("processed", s.Processed),
		zap.Uint64("failed", s.Failed),
		zap.Uint64("batches", s.Batches),
		zap.Duration("last_batch", s.LastBatch),
		zap.Duration("max_batch", s.MaxBatch),
	}
}
