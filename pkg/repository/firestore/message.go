package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type messageDoc struct {
	ID        string    `firestore:"ID"`
	ChatID    string    `firestore:"ChatID"`
	Role      string    `firestore:"Role"`
	Content   string    `firestore:"Content"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type messageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMessageRepository(client *firestore.Client) *messageRepository {
	return &messageRepository{client: client}
}

// messages are stored as a subcollection of their chat
func (r *messageRepository) messages(chatID model.ChatID) *firestore.CollectionRef {
	return r.client.
		Collection(collectionName(r.collectionPrefix, chatsCollection)).Doc(string(chatID)).
		Collection(messagesCollection)
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) (*model.Message, error) {
	created := *msg
	if created.ID == "" {
		created.ID = model.NewMessageID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	d := &messageDoc{
		ID:        string(created.ID),
		ChatID:    string(created.ChatID),
		Role:      string(created.Role),
		Content:   created.Content,
		CreatedAt: created.CreatedAt,
	}
	if _, err := r.messages(created.ChatID).Doc(d.ID).Set(ctx, d); err != nil {
		return nil, goerr.Wrap(err, "failed to append message",
			goerr.V("chat_id", created.ChatID),
			goerr.V("message_id", created.ID))
	}
	return &created, nil
}

func (r *messageRepository) ListRecent(ctx context.Context, chatID model.ChatID, limit int) ([]*model.Message, error) {
	query := r.messages(chatID).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.Message, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V("chat_id", chatID))
		}

		var d messageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message", goerr.V("doc_id", doc.Ref.ID))
		}
		messages = append(messages, &model.Message{
			ID:        model.MessageID(d.ID),
			ChatID:    model.ChatID(d.ChatID),
			Role:      types.MessageRole(d.Role),
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
		})
	}

	// fetched newest first; callers expect conversation order
	slices.Reverse(messages)
	return messages, nil
}

func (r *messageRepository) DeleteByChat(ctx context.Context, chatID model.ChatID) error {
	const batchSize = 500

	for {
		iter := r.messages(chatID).Limit(batchSize).Documents(ctx)
		bulkWriter := r.client.BulkWriter(ctx)
		count := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return goerr.Wrap(err, "failed to iterate messages for deletion", goerr.V("chat_id", chatID))
			}

			if _, err := bulkWriter.Delete(doc.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return goerr.Wrap(err, "failed to delete message", goerr.V("chat_id", chatID))
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
