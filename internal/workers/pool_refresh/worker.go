// Package pool_refresh repopulates the pool snapshot cache on a schedule
// so browser requests mostly hit warm data.
package pool_refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// SnapshotRefresher re-reads pool state and overwrites the cache.
type SnapshotRefresher interface {
	RefreshV2(ctx context.Context) error
}

// Worker runs the refresher on a cron schedule.
type Worker struct {
	refresher SnapshotRefresher
	spec      string
	cron      *cron.Cron
	logger    *logger.Logger
}

// NewWorker creates a new pool refresh worker. The schedule uses the
// standard cron format, including descriptors like "@every 10m".
func NewWorker(refresher SnapshotRefresher, spec string, logger *logger.Logger) *Worker {
	if spec == "" {
		spec = "@every 10m"
	}
	return &Worker{
		refresher: refresher,
		spec:      spec,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start schedules the refresher and runs one refresh immediately.
func (w *Worker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.refresh(ctx)
	})
	if err != nil {
		return err
	}

	w.logger.Info("Starting pool refresh worker", "spec", w.spec)
	w.cron.Start()

	go w.refresh(ctx)
	return nil
}

// Stop stops the schedule and waits for a running refresh to finish.
func (w *Worker) Stop() {
	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		w.logger.Warn("Pool refresh worker stop timed out")
	}
}

func (w *Worker) refresh(ctx context.Context) {
	start := time.Now()
	if err := w.refresher.RefreshV2(ctx); err != nil {
		w.logger.Error("Pool snapshot refresh failed", "error", err)
		return
	}
	w.logger.Debug("Pool snapshot refresh finished", "took", time.Since(start).String())
}
