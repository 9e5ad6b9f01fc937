package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type chatRepository struct {
	mu    sync.RWMutex
	chats map[model.ChatID]*model.Chat
}

func newChatRepository() *chatRepository {
	return &chatRepository{
		chats: make(map[model.ChatID]*model.Chat),
	}
}

func copyChat(c *model.Chat) *model.Chat {
	copied := *c
	return &copied
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyChat(chat)
	if created.ID == "" {
		created.ID = model.NewChatID()
	}
	if created.Title == "" {
		created.Title = model.DefaultChatTitle
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.chats[created.ID] = created
	return copyChat(created), nil
}

func (r *chatRepository) Get(ctx context.Context, id model.ChatID) (*model.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, exists := r.chats[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "chat not found", goerr.V("id", id))
	}
	return copyChat(chat), nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Chat, 0)
	for _, c := range r.chats {
		if c.UserID == userID {
			result = append(result, copyChat(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *chatRepository) ListByAgent(ctx context.Context, agentID model.AgentID) ([]*model.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Chat, 0)
	for _, c := range r.chats {
		if c.AgentID == agentID {
			result = append(result, copyChat(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *chatRepository) Touch(ctx context.Context, id model.ChatID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, exists := r.chats[id]
	if !exists {
		return goerr.Wrap(model.ErrNotFound, "chat not found", goerr.V("id", id))
	}
	chat.UpdatedAt = at.UTC()
	return nil
}

func (r *chatRepository) Delete(ctx context.Context, id model.ChatID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chats[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "chat not found", goerr.V("id", id))
	}
	delete(r.chats, id)
	return nil
}
