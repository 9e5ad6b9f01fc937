package jobs

import (
	"sync"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultCompletedRetention keeps a completed job visible for polling clients
	DefaultCompletedRetention = 5 * time.Minute
	// DefaultFailedRetention is longer so users have time to read the error
	DefaultFailedRetention = 15 * time.Minute

	// maxRunningProgress leaves 100 for Complete
	maxRunningProgress = 99
)

var (
	ErrJobNotFound       = goerr.New("ingestion job not found")
	ErrJobExists         = goerr.New("ingestion job already exists")
	ErrInvalidTransition = goerr.New("invalid ingestion job transition")
)

// Registry is the process-wide table of in-flight and recently finished
// ingestion jobs. All methods are safe for concurrent use and every read
// returns a copy.
//
// Terminal jobs stay readable until ExpiresAt. Expired entries are hidden
// from reads immediately and physically removed by Sweep.
type Registry struct {
	mu                 sync.Mutex
	jobs               map[model.JobID]*model.IngestionJob
	now                func() time.Time
	completedRetention time.Duration
	failedRetention    time.Duration
}

type Option func(*Registry)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithRetention sets how long terminal jobs stay readable
func WithRetention(completed, failed time.Duration) Option {
	return func(r *Registry) {
		if completed > 0 {
			r.completedRetention = completed
		}
		if failed > 0 {
			r.failedRetention = failed
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		jobs:               make(map[model.JobID]*model.IngestionJob),
		now:                time.Now,
		completedRetention: DefaultCompletedRetention,
		failedRetention:    DefaultFailedRetention,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) expired(job *model.IngestionJob, now time.Time) bool {
	return !job.ExpiresAt.IsZero() && !now.Before(job.ExpiresAt)
}

// lookup returns the live entry for id. Caller must hold mu.
func (r *Registry) lookup(id model.JobID, now time.Time) (*model.IngestionJob, bool) {
	job, ok := r.jobs[id]
	if !ok || r.expired(job, now) {
		return nil, false
	}
	return job, true
}

// Create registers a new job in processing state with progress 0. At most one
// live job may exist per ID.
func (r *Registry) Create(job *model.IngestionJob) (*model.IngestionJob, error) {
	if job.ID == "" {
		return nil, goerr.New("ingestion job ID is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if _, exists := r.lookup(job.ID, now); exists {
		return nil, goerr.Wrap(ErrJobExists, "failed to create ingestion job", goerr.V("id", job.ID))
	}

	created := job.Copy()
	created.Status = types.JobStatusProcessing
	created.Progress = 0
	created.Error = ""
	created.DocumentID = ""
	created.CreatedAt = now
	created.UpdatedAt = now
	created.ExpiresAt = time.Time{}

	r.jobs[created.ID] = created
	return created.Copy(), nil
}

// Get returns the live job for id
func (r *Registry) Get(id model.JobID) (*model.IngestionJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.lookup(id, r.now())
	if !ok {
		return nil, false
	}
	return job.Copy(), true
}

// UpdateProgress raises the progress of a processing job. Lower values are
// ignored so progress never goes backwards.
func (r *Registry) UpdateProgress(id model.JobID, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	job, ok := r.lookup(id, now)
	if !ok {
		return goerr.Wrap(ErrJobNotFound, "failed to update progress", goerr.V("id", id))
	}
	if job.Status != types.JobStatusProcessing {
		return goerr.Wrap(ErrInvalidTransition, "job is no longer processing",
			goerr.V("id", id),
			goerr.V("status", job.Status))
	}

	progress = min(max(progress, 0), maxRunningProgress)
	if progress > job.Progress {
		job.Progress = progress
		job.UpdatedAt = now
	}
	return nil
}

// Complete moves a processing job to completed with progress 100
func (r *Registry) Complete(id model.JobID, documentID model.DocumentID) error {
	return r.finish(id, types.JobStatusCompleted, func(job *model.IngestionJob, now time.Time) {
		job.Progress = 100
		job.DocumentID = documentID
		job.ExpiresAt = now.Add(r.completedRetention)
	})
}

// Fail moves a processing job to failed and records the reason
func (r *Registry) Fail(id model.JobID, reason string) error {
	return r.finish(id, types.JobStatusFailed, func(job *model.IngestionJob, now time.Time) {
		job.Error = reason
		job.ExpiresAt = now.Add(r.failedRetention)
	})
}

func (r *Registry) finish(id model.JobID, next types.JobStatus, apply func(job *model.IngestionJob, now time.Time)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	job, ok := r.lookup(id, now)
	if !ok {
		return goerr.Wrap(ErrJobNotFound, "failed to finish ingestion job", goerr.V("id", id))
	}
	if !job.Status.CanTransitionTo(next) {
		return goerr.Wrap(ErrInvalidTransition, "failed to finish ingestion job",
			goerr.V("id", id),
			goerr.V("from", job.Status),
			goerr.V("to", next))
	}

	job.Status = next
	job.UpdatedAt = now
	apply(job, now)
	return nil
}

// Sweep removes expired jobs and returns how many were removed
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, job := range r.jobs {
		if r.expired(job, now) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet swept
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
