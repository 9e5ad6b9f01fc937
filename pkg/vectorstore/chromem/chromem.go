package chromem

import (
	"context"
	"strconv"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/philippgille/chromem-go"
)

const (
	defaultCollection = "chunks"

	metaDocumentID = "documentId"
	metaAgentID    = "agentId"
	metaTitle      = "title"
	metaChunkIndex = "chunkIndex"
)

// Store keeps chunk vectors in an embedded chromem-go collection.
// Vectors are always supplied by the caller, so the collection has no embedding function.
type Store struct {
	collection *chromem.Collection
}

var _ interfaces.VectorStore = &Store{}

type Option func(*options)

type options struct {
	collection string
}

// WithCollection overrides the collection name
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// New creates a store backed by db
func New(db *chromem.DB, opts ...Option) (*Store, error) {
	o := &options{collection: defaultCollection}
	for _, opt := range opts {
		opt(o)
	}

	coll, err := db.GetOrCreateCollection(o.collection, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open chromem collection", goerr.V("collection", o.collection))
	}
	return &Store{collection: coll}, nil
}

// Open creates an in-memory database when path is empty, otherwise a persistent one at path
func Open(path string, opts ...Option) (*Store, error) {
	db := chromem.NewDB()
	if path != "" {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open chromem database", goerr.V("path", path))
		}
	}
	return New(db, opts...)
}

func toMetadata(m model.VectorMetadata) map[string]string {
	return map[string]string{
		metaDocumentID: string(m.DocumentID),
		metaAgentID:    string(m.AgentID),
		metaTitle:      m.Title,
		metaChunkIndex: strconv.Itoa(m.ChunkIndex),
	}
}

func fromMetadata(meta map[string]string, content string) model.VectorMetadata {
	idx, _ := strconv.Atoi(meta[metaChunkIndex])
	return model.VectorMetadata{
		DocumentID: model.DocumentID(meta[metaDocumentID]),
		AgentID:    model.AgentID(meta[metaAgentID]),
		Title:      meta[metaTitle],
		Content:    content,
		ChunkIndex: idx,
	}
}

func toWhere(filter model.VectorFilter) map[string]string {
	if filter.IsEmpty() {
		return nil
	}
	where := make(map[string]string, 2)
	if filter.AgentID != "" {
		where[metaAgentID] = string(filter.AgentID)
	}
	if filter.DocumentID != "" {
		where[metaDocumentID] = string(filter.DocumentID)
	}
	return where
}

func (s *Store) Upsert(ctx context.Context, record *model.VectorRecord) error {
	if len(record.Vector) == 0 {
		return goerr.New("vector is empty", goerr.V("id", record.ID))
	}

	// chromem normalizes in place
	vec := make([]float32, len(record.Vector))
	copy(vec, record.Vector)

	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:        record.ID,
		Metadata:  toMetadata(record.Metadata),
		Embedding: vec,
		Content:   record.Metadata.Content,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to add chromem document", goerr.V("id", record.ID))
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter model.VectorFilter) ([]*model.VectorMatch, error) {
	if topK <= 0 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}

	// chromem rejects nResults larger than the collection
	n := min(topK, s.collection.Count())
	if n == 0 {
		return []*model.VectorMatch{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, n, toWhere(filter), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query chromem collection")
	}

	matches := make([]*model.VectorMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, &model.VectorMatch{
			ID:       r.ID,
			Score:    r.Similarity,
			Metadata: fromMetadata(r.Metadata, r.Content),
		})
	}
	return matches, nil
}

func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return goerr.Wrap(err, "failed to delete chromem documents", goerr.V("ids", ids))
	}
	return nil
}

func (s *Store) DeleteByFilter(ctx context.Context, filter model.VectorFilter) error {
	if filter.IsEmpty() {
		return goerr.New("refusing to delete with empty filter")
	}
	if err := s.collection.Delete(ctx, toWhere(filter), nil); err != nil {
		return goerr.Wrap(err, "failed to delete chromem documents by filter",
			goerr.V("agent_id", filter.AgentID),
			goerr.V("document_id", filter.DocumentID))
	}
	return nil
}
