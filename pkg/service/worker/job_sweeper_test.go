package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/jobs"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/worker"
	"github.com/m-mizutani/gt"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() int {
	s.calls.Add(1)
	return 0
}

func TestJobSweeper_PeriodicSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	w := worker.NewJobSweeper(sweeper, 20*time.Millisecond)

	gt.NoError(t, w.Start(context.Background())).Required()
	time.Sleep(150 * time.Millisecond)
	w.Stop()

	calls := sweeper.calls.Load()
	gt.Bool(t, calls >= 2).True()

	// no sweeps after Stop
	time.Sleep(60 * time.Millisecond)
	gt.Number(t, sweeper.calls.Load()).Equal(calls)
}

func TestJobSweeper_RemovesExpiredJobs(t *testing.T) {
	registry := jobs.NewRegistry(jobs.WithRetention(10*time.Millisecond, 10*time.Millisecond))
	_, err := registry.Create(&model.IngestionJob{ID: "job-1", AgentID: "agent-1"})
	gt.NoError(t, err).Required()
	gt.NoError(t, registry.Complete("job-1", "doc-1")).Required()

	w := worker.NewJobSweeper(registry, 20*time.Millisecond)
	gt.NoError(t, w.Start(context.Background())).Required()
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for registry.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	gt.Number(t, registry.Len()).Equal(0)
}

func TestJobSweeper_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &countingSweeper{}
	w := worker.NewJobSweeper(sweeper, time.Hour)

	gt.NoError(t, w.Start(ctx)).Required()
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
