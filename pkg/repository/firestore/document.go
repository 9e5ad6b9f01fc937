package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type documentDoc struct {
	ID            string    `firestore:"ID"`
	AgentID       string    `firestore:"AgentID"`
	Title         string    `firestore:"Title"`
	FileName      string    `firestore:"FileName"`
	Content       string    `firestore:"Content"`
	VectorGroupID string    `firestore:"VectorGroupID"`
	ChunkCount    int       `firestore:"ChunkCount"`
	CreatedAt     time.Time `firestore:"CreatedAt"`
	Ready         bool      `firestore:"Ready"`
}

func toDocumentDoc(d *model.Document) *documentDoc {
	return &documentDoc{
		ID:            string(d.ID),
		AgentID:       string(d.AgentID),
		Title:         d.Title,
		FileName:      d.FileName,
		Content:       d.Content,
		VectorGroupID: string(d.VectorGroupID),
		ChunkCount:    d.ChunkCount,
		CreatedAt:     d.CreatedAt,
		Ready:         d.Ready,
	}
}

func docToDocument(doc *firestore.DocumentSnapshot) (*model.Document, error) {
	var d documentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Document{
		ID:            model.DocumentID(d.ID),
		AgentID:       model.AgentID(d.AgentID),
		Title:         d.Title,
		FileName:      d.FileName,
		Content:       d.Content,
		VectorGroupID: model.VectorGroupID(d.VectorGroupID),
		ChunkCount:    d.ChunkCount,
		CreatedAt:     d.CreatedAt,
		Ready:         d.Ready,
	}, nil
}

type documentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDocumentRepository(client *firestore.Client) *documentRepository {
	return &documentRepository{client: client}
}

func (r *documentRepository) documents() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, documentsCollection))
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	created := *doc
	if created.ID == "" {
		created.ID = model.NewDocumentID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.documents().Doc(string(created.ID)).Set(ctx, toDocumentDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	doc, err := r.documents().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	d, err := docToDocument(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("id", id))
	}
	return d, nil
}

func (r *documentRepository) ListByAgent(ctx context.Context, agentID model.AgentID) ([]*model.Document, error) {
	iter := r.documents().
		Where("AgentID", "==", string(agentID)).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	docs := make([]*model.Document, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("agentID", agentID))
		}

		d, err := docToDocument(snap)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("docID", snap.Ref.ID))
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (r *documentRepository) MarkReady(ctx context.Context, id model.DocumentID) error {
	_, err := r.documents().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "Ready", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to mark document ready", goerr.V("id", id))
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id model.DocumentID) error {
	ref := r.documents().Doc(string(id))
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "document not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("id", id))
	}
	return nil
}
