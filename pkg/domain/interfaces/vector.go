package interfaces

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
)

// VectorStore persists chunk vectors and answers similarity queries.
// Implementations must be safe for concurrent writes with distinct IDs.
type VectorStore interface {
	Upsert(ctx context.Context, record *model.VectorRecord) error
	// Query returns at most topK matches satisfying filter in descending score order
	Query(ctx context.Context, vector []float32, topK int, filter model.VectorFilter) ([]*model.VectorMatch, error)
	Delete(ctx context.Context, ids ...string) error
	// DeleteByFilter removes every record matching filter. An empty filter is rejected.
	DeleteByFilter(ctx context.Context, filter model.VectorFilter) error
}
