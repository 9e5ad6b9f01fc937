package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

const (
	// CollectionName is the default collection holding chunk vectors
	CollectionName = "chunk_vectors"

	distanceField = "VectorDistance"
	batchSize     = 500
)

// chunkDoc embeds the vector as firestore.Vector32 so FindNearest can use it
type chunkDoc struct {
	ID         string             `firestore:"ID"`
	DocumentID string             `firestore:"DocumentID"`
	AgentID    string             `firestore:"AgentID"`
	Title      string             `firestore:"Title"`
	Content    string             `firestore:"Content"`
	ChunkIndex int                `firestore:"ChunkIndex"`
	Embedding  firestore.Vector32 `firestore:"Embedding"`
}

// Store uses Firestore vector search. The AgentID filter is applied as an
// equality pre-filter, which needs the composite vector index created by migrate.
type Store struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.VectorStore = &Store{}

type Option func(*Store)

// WithCollection overrides the collection name
func WithCollection(name string) Option {
	return func(s *Store) {
		s.collection = name
	}
}

func New(client *firestore.Client, opts ...Option) *Store {
	s := &Store{client: client, collection: CollectionName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) chunks() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *Store) filtered(filter model.VectorFilter) firestore.Query {
	q := s.chunks().Query
	if filter.AgentID != "" {
		q = q.Where("AgentID", "==", string(filter.AgentID))
	}
	if filter.DocumentID != "" {
		q = q.Where("DocumentID", "==", string(filter.DocumentID))
	}
	return q
}

func (s *Store) Upsert(ctx context.Context, record *model.VectorRecord) error {
	if len(record.Vector) == 0 {
		return goerr.New("vector is empty", goerr.V("id", record.ID))
	}

	doc := &chunkDoc{
		ID:         record.ID,
		DocumentID: string(record.Metadata.DocumentID),
		AgentID:    string(record.Metadata.AgentID),
		Title:      record.Metadata.Title,
		Content:    record.Metadata.Content,
		ChunkIndex: record.Metadata.ChunkIndex,
		Embedding:  firestore.Vector32(record.Vector),
	}
	if _, err := s.chunks().Doc(record.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to upsert chunk vector", goerr.V("id", record.ID))
	}
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter model.VectorFilter) ([]*model.VectorMatch, error) {
	if topK <= 0 {
		return nil, goerr.New("topK must be positive", goerr.V("topK", topK))
	}

	vq := s.filtered(filter).FindNearest("Embedding", firestore.Vector32(vector), topK,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: distanceField},
	)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.VectorMatch, 0, topK)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var d chunkDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk vector", goerr.V("docID", snap.Ref.ID))
		}

		// cosine distance is 1 - similarity
		var distance float64
		if v, ok := snap.Data()[distanceField].(float64); ok {
			distance = v
		}

		matches = append(matches, &model.VectorMatch{
			ID:    d.ID,
			Score: float32(1 - distance),
			Metadata: model.VectorMetadata{
				DocumentID: model.DocumentID(d.DocumentID),
				AgentID:    model.AgentID(d.AgentID),
				Title:      d.Title,
				Content:    d.Content,
				ChunkIndex: d.ChunkIndex,
			},
		})
	}
	return matches, nil
}

func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	bulkWriter := s.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for _, id := range ids {
		if _, err := bulkWriter.Delete(s.chunks().Doc(id)); err != nil {
			return goerr.Wrap(err, "failed to delete chunk vector", goerr.V("id", id))
		}
	}
	return nil
}

func (s *Store) DeleteByFilter(ctx context.Context, filter model.VectorFilter) error {
	if filter.IsEmpty() {
		return goerr.New("refusing to delete with empty filter")
	}

	for {
		iter := s.filtered(filter).Limit(batchSize).Documents(ctx)
		bulkWriter := s.client.BulkWriter(ctx)
		count := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return goerr.Wrap(err, "failed to iterate chunk vectors for deletion")
			}

			if _, err := bulkWriter.Delete(doc.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return goerr.Wrap(err, "failed to delete chunk vector", goerr.V("id", doc.Ref.ID))
			}
			count++
		}
		iter.Stop()
		bulkWriter.End()

		if count < batchSize {
			return nil
		}
	}
}
