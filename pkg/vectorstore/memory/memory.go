package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Store is an exhaustive cosine-similarity vector store kept in process memory.
// It is meant for development and tests, not for large corpora.
type Store struct {
	mu      sync.RWMutex
	records map[string]*model.VectorRecord
}

var _ interfaces.VectorStore = &Store{}

func New() *Store {
	return &Store{
		records: make(map[string]*model.VectorRecord),
	}
}

func copyRecord(r *model.VectorRecord) *model.VectorRecord {
	copied := &model.VectorRecord{
		ID:       r.ID,
		Metadata: r.Metadata,
	}
	if r.Vector != nil {
		copied.Vector = make([]float32, len(r.Vector))
		copy(copied.Vector, r.Vector)
	}
	return copied
}

func (s *Store) Upsert(ctx context.Context, record *model.VectorRecord) error {
	if record.ID == "" {
		return goerr.New("vector record ID is empty")
	}
	if len(record.Vector) == 0 {
		return goerr.New("vector is empty", goerr.V("id", record.ID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = copyRecord(record)
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter model.VectorFilter) ([]*model.VectorMatch, error) {
	if topK <= 0 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]*model.VectorMatch, 0)
	for _, r := range s.records {
		if !filter.Match(r.Metadata) {
			continue
		}
		candidates = append(candidates, &model.VectorMatch{
			ID:       r.ID,
			Score:    float32(cosineSimilarity(vector, r.Vector)),
			Metadata: r.Metadata,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (s *Store) Delete(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

func (s *Store) DeleteByFilter(ctx context.Context, filter model.VectorFilter) error {
	if filter.IsEmpty() {
		return goerr.New("refusing to delete with empty filter")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.records {
		if filter.Match(r.Metadata) {
			delete(s.records, id)
		}
	}
	return nil
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
