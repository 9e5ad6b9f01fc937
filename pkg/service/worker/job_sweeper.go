package worker

import (
	"context"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
)

// Sweeper is the part of the job registry the sweeper needs
type Sweeper interface {
	Sweep() int
}

// JobSweeper periodically removes expired ingestion jobs from the in-memory registry.
// Reads already hide expired jobs; sweeping only bounds memory.
type JobSweeper struct {
	registry Sweeper
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewJobSweeper(registry Sweeper, interval time.Duration) *JobSweeper {
	return &JobSweeper{
		registry: registry,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine
func (w *JobSweeper) Start(ctx context.Context) error {
	logging.Default().Info("Job sweeper starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *JobSweeper) Stop() {
	logging.Default().Info("Job sweeper stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Job sweeper stopped")
}

func (w *JobSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()

		case <-w.stopCh:
			logging.Default().Info("Job sweeper received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Job sweeper context cancelled")
			return
		}
	}
}

func (w *JobSweeper) sweep() {
	if removed := w.registry.Sweep(); removed > 0 {
		logging.Default().Debug("Swept expired ingestion jobs", "removed", removed)
	}
}
