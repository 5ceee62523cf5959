package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"salesdash/internal/amqp"
	applog "salesdash/internal/log"
)

// Seeder reloads the transaction store and reports how many records it holds.
type Seeder interface {
	Load(ctx context.Context) (int, error)
}

// SeedWorker runs the seed loader for every seed request taken off the queue.
// Requests issued before the last successful reload started are skipped, so a
// burst of queued requests costs a single fetch.
type SeedWorker struct {
	seeder Seeder
	logger *applog.Logger
	now    func() time.Time

	mu         sync.Mutex
	lastReload time.Time
}

func NewSeedWorker(seeder Seeder, logger *applog.Logger) *SeedWorker {
	return &SeedWorker{
		seeder: seeder,
		logger: logger.WithComponent(applog.ComponentWorker),
		now:    time.Now,
	}
}

// HandleSeedRequest processes a single seed request from AMQP. A returned
// error rejects the delivery without requeueing it.
func (w *SeedWorker) HandleSeedRequest(ctx context.Context, msg *amqp.SeedRequestMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastReload.IsZero() && msg.Timestamp.Before(w.lastReload) {
		w.logger.InfoContext(ctx, "Skipping stale seed request",
			"requested_by", msg.RequestedBy,
			"requested_at", msg.Timestamp,
			"last_reload", w.lastReload)
		return nil
	}

	started := w.now()
	count, err := w.seeder.Load(ctx)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	w.lastReload = started

	w.logger.InfoContext(ctx, "Seed request completed",
		"requested_by", msg.RequestedBy,
		applog.FieldCount, count,
		applog.FieldDuration, time.Since(started).Milliseconds())
	return nil
}

// LastReload returns the start time of the last successful reload.
func (w *SeedWorker) LastReload() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReload
}
