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

type chatDoc struct {
	ID        string    `firestore:"ID"`
	UserID    string    `firestore:"UserID"`
	AgentID   string    `firestore:"AgentID"`
	Title     string    `firestore:"Title"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

func docToChat(doc *firestore.DocumentSnapshot) (*model.Chat, error) {
	var d chatDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Chat{
		ID:        model.ChatID(d.ID),
		UserID:    d.UserID,
		AgentID:   model.AgentID(d.AgentID),
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type chatRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newChatRepository(client *firestore.Client) *chatRepository {
	return &chatRepository{client: client}
}

func (r *chatRepository) chats() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, chatsCollection))
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	now := time.Now().UTC()
	created := *chat
	if created.ID == "" {
		created.ID = model.NewChatID()
	}
	if created.Title == "" {
		created.Title = model.DefaultChatTitle
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	d := &chatDoc{
		ID:        string(created.ID),
		UserID:    created.UserID,
		AgentID:   string(created.AgentID),
		Title:     created.Title,
		CreatedAt: created.CreatedAt,
		UpdatedAt: created.UpdatedAt,
	}
	if _, err := r.chats().Doc(d.ID).Set(ctx, d); err != nil {
		return nil, goerr.Wrap(err, "failed to create chat", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *chatRepository) Get(ctx context.Context, id model.ChatID) (*model.Chat, error) {
	doc, err := r.chats().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "chat not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get chat", goerr.V("id", id))
	}

	chat, err := docToChat(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal chat", goerr.V("id", id))
	}
	return chat, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	return r.list(ctx, r.chats().Where("UserID", "==", userID), "userID", userID)
}

func (r *chatRepository) ListByAgent(ctx context.Context, agentID model.AgentID) ([]*model.Chat, error) {
	return r.list(ctx, r.chats().Where("AgentID", "==", string(agentID)), "agentID", agentID)
}

// list runs query ordered by last activity, newest first
func (r *chatRepository) list(ctx context.Context, query firestore.Query, key string, value any) ([]*model.Chat, error) {
	iter := query.OrderBy("UpdatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	chats := make([]*model.Chat, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate chats", goerr.V(key, value))
		}

		chat, err := docToChat(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chat", goerr.V("docID", doc.Ref.ID))
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (r *chatRepository) Touch(ctx context.Context, id model.ChatID, at time.Time) error {
	_, err := r.chats().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "UpdatedAt", Value: at.UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "chat not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to touch chat", goerr.V("id", id))
	}
	return nil
}

func (r *chatRepository) Delete(ctx context.Context, id model.ChatID) error {
	ref := r.chats().Doc(string(id))
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "chat not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get chat", goerr.V("id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete chat", goerr.V("id", id))
	}
	return nil
}
