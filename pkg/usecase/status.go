package usecase

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/jobs"
	"github.com/m-mizutani/goerr/v2"
)

// StatusStrategy looks up a job status in one source. It returns nil
// without error when the source does not know id.
type StatusStrategy interface {
	Resolve(ctx context.Context, id string) (*model.JobStatusView, error)
}

// StatusResolver asks each strategy in order and returns the first match
type StatusResolver struct {
	strategies []StatusStrategy
}

func NewStatusResolver(strategies ...StatusStrategy) *StatusResolver {
	return &StatusResolver{strategies: strategies}
}

// Resolve never returns nil. Unknown ids yield a not_found view.
func (r *StatusResolver) Resolve(ctx context.Context, id string) (*model.JobStatusView, error) {
	for _, s := range r.strategies {
		view, err := s.Resolve(ctx, id)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve job status", goerr.V(JobIDKey, id))
		}
		if view != nil {
			return view, nil
		}
	}
	return &model.JobStatusView{ID: id, Status: types.JobStatusNotFound}, nil
}

// RegistryStatus reads live jobs from the in-memory registry
type RegistryStatus struct {
	registry *jobs.Registry
}

func NewRegistryStatus(registry *jobs.Registry) *RegistryStatus {
	return &RegistryStatus{registry: registry}
}

func (s *RegistryStatus) Resolve(ctx context.Context, id string) (*model.JobStatusView, error) {
	job, ok := s.registry.Get(model.JobID(id))
	if !ok {
		return nil, nil
	}

	view := &model.JobStatusView{
		ID:       id,
		Status:   job.Status,
		Progress: job.Progress,
		Error:    job.Error,
	}
	if job.Status == types.JobStatusCompleted {
		view.DocumentID = job.DocumentID
	}
	return view, nil
}

// DocumentStatus treats id as a document ID. Only a ready document means the
// job completed; a document left by a failed run resolves as unknown.
type DocumentStatus struct {
	documents interfaces.DocumentRepository
}

func NewDocumentStatus(documents interfaces.DocumentRepository) *DocumentStatus {
	return &DocumentStatus{documents: documents}
}

func (s *DocumentStatus) Resolve(ctx context.Context, id string) (*model.JobStatusView, error) {
	doc, err := s.documents.Get(ctx, model.DocumentID(id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to look up document", goerr.V(DocumentIDKey, id))
	}
	if !doc.Ready {
		return nil, nil
	}

	return &model.JobStatusView{
		ID:         id,
		Status:     types.JobStatusCompleted,
		Progress:   100,
		DocumentID: doc.ID,
	}, nil
}
