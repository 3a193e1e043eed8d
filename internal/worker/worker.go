// Package worker runs periodic storefront maintenance. It currently sweeps
// carts that have been idle for longer than the retention period.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sweeper deletes carts last changed before a cutoff.
type Sweeper interface {
	DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance in logs
	WorkerID string

	// Interval is how often idle carts are swept
	Interval time.Duration

	// Retention is how long an untouched cart is kept
	Retention time.Duration

	// Timeout bounds a single sweep
	Timeout time.Duration
}

// Worker sweeps idle carts on a fixed interval.
type Worker struct {
	config  Config
	sweeper Sweeper
	logger  *slog.Logger
	now     func() time.Time
}

// NewWorker creates a new cart sweeper
func NewWorker(sweeper Sweeper, config Config, logger *slog.Logger) *Worker {
	// Set defaults
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.Retention <= 0 {
		config.Retention = 30 * 24 * time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
		now:     time.Now,
	}
}

// Start sweeps once per interval until the context is cancelled. A tick that
// arrives while the previous sweep is still running is skipped. Start waits
// for the in-flight sweep before returning ctx.Err().
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"interval", w.config.Interval,
		"retention", w.config.Retention,
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	sem := make(chan struct{}, 1)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			wg.Wait()
			return ctx.Err()

		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer func() { <-sem }()
					_, _ = w.RunOnce(ctx)
				}()
			default:
				w.logger.Debug("previous sweep still running, skipping", "worker_id", w.config.WorkerID)
			}
		}
	}
}

// RunOnce deletes carts idle for longer than the retention period.
func (w *Worker) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	cutoff := w.now().Add(-w.config.Retention)
	removed, err := w.sweeper.DeleteIdle(ctx, cutoff)
	if err != nil {
		w.logger.Error("cart sweep failed", "worker_id", w.config.WorkerID, "error", err)
		return 0, err
	}

	if removed > 0 {
		w.logger.Info("swept idle carts", "worker_id", w.config.WorkerID, "lines", removed, "cutoff", cutoff)
	}
	return removed, nil
}
