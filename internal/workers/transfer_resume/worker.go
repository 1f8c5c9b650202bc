// Package transfer_resume re-drives bridge transfers that were left in a
// resumable status, typically after a crash or an attestation that took
// longer than one poll budget.
package transfer_resume

import (
	"context"
	"time"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// TransferStore lists stored transfers by status.
type TransferStore interface {
	ListByStatus(ctx context.Context, status entities.TransferStatus) ([]*entities.PendingBridgeTransfer, error)
}

// Resumer re-enters a transfer at the step its status implies.
type Resumer interface {
	Resume(ctx context.Context, id string) (*entities.PendingBridgeTransfer, error)
}

// Worker sweeps resumable transfers on a ticker, driving them one at a
// time so a slow attestation cannot pile up concurrent engine runs.
type Worker struct {
	store         TransferStore
	resumer       Resumer
	checkInterval time.Duration
	maxPerSweep   int
	perTransfer   time.Duration
	logger        *logger.Logger
	stopCh        chan struct{}
}

// Config holds worker configuration
type Config struct {
	CheckInterval      time.Duration
	MaxPerSweep        int
	PerTransferTimeout time.Duration
}

// DefaultConfig returns default worker configuration
func DefaultConfig() *Config {
	return &Config{
		CheckInterval:      5 * time.Minute,
		MaxPerSweep:        10,
		PerTransferTimeout: 15 * time.Minute,
	}
}

// NewWorker creates a new transfer resume worker
func NewWorker(store TransferStore, resumer Resumer, config *Config, logger *logger.Logger) *Worker {
	if config == nil {
		config = DefaultConfig()
	}
	return &Worker{
		store:         store,
		resumer:       resumer,
		checkInterval: config.CheckInterval,
		maxPerSweep:   config.MaxPerSweep,
		perTransfer:   config.PerTransferTimeout,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the resume worker
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting transfer resume worker",
		"check_interval", w.checkInterval.String(),
		"max_per_sweep", w.maxPerSweep)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	// Run immediately on start to pick up transfers interrupted by the
	// previous shutdown.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Transfer resume worker stopped (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info("Transfer resume worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	close(w.stopCh)
}

// sweep resumes up to maxPerSweep transfers, ready_to_mint first since
// those finish with a single transaction.
func (w *Worker) sweep(ctx context.Context) {
	budget := w.maxPerSweep
	for _, status := range []entities.TransferStatus{
		entities.TransferStatusReadyToMint,
		entities.TransferStatusAttesting,
	} {
		if budget <= 0 {
			return
		}

		transfers, err := w.store.ListByStatus(ctx, status)
		if err != nil {
			w.logger.Error("Failed to list resumable transfers",
				"status", string(status),
				"error", err)
			continue
		}

		for _, transfer := range transfers {
			if budget <= 0 {
				return
			}
			if ctx.Err() != nil {
				return
			}
			budget--
			w.resumeOne(ctx, transfer.ID)
		}
	}
}

func (w *Worker) resumeOne(ctx context.Context, id string) {
	runCtx, cancel := context.WithTimeout(ctx, w.perTransfer)
	defer cancel()

	record, err := w.resumer.Resume(runCtx, id)
	if err != nil {
		// Recoverable outcomes (attestation still pending, mint retry)
		// surface as errors; the next sweep tries again.
		w.logger.Warn("Transfer resume did not complete",
			"transfer_id", id,
			"error", err)
		return
	}

	w.logger.Info("Transfer resumed",
		"transfer_id", id,
		"status", string(record.Status))
}
