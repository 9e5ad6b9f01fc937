package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type documentRepository struct {
	mu        sync.RWMutex
	documents map[model.DocumentID]*model.Document
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		documents: make(map[model.DocumentID]*model.Document),
	}
}

func copyDocument(d *model.Document) *model.Document {
	copied := *d
	return &copied
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyDocument(doc)
	if created.ID == "" {
		created.ID = model.NewDocumentID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.documents[created.ID] = created
	return copyDocument(created), nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
	}
	return copyDocument(doc), nil
}

func (r *documentRepository) ListByAgent(ctx context.Context, agentID model.AgentID) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Document, 0)
	for _, d := range r.documents {
		if d.AgentID == agentID {
			result = append(result, copyDocument(d))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *documentRepository) MarkReady(ctx context.Context, id model.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.documents[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
	}
	doc.Ready = true
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id model.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
	}
	delete(r.documents, id)
	return nil
}
