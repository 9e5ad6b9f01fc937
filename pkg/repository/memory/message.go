package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
)

// storedMessage keeps an insertion sequence so turns created within the same
// clock tick keep their append order
type storedMessage struct {
	msg *model.Message
	seq uint64
}

type messageRepository struct {
	mu       sync.RWMutex
	seq      uint64
	messages map[model.ChatID][]storedMessage
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		messages: make(map[model.ChatID][]storedMessage),
	}
}

func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyMessage(msg)
	if created.ID == "" {
		created.ID = model.NewMessageID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.seq++
	r.messages[created.ChatID] = append(r.messages[created.ChatID], storedMessage{msg: created, seq: r.seq})
	return copyMessage(created), nil
}

func (r *messageRepository) ListRecent(ctx context.Context, chatID model.ChatID, limit int) ([]*model.Message, error) {
	r.mu.RLock()
	stored := make([]storedMessage, len(r.messages[chatID]))
	copy(stored, r.messages[chatID])
	r.mu.RUnlock()

	sort.SliceStable(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
			return a.msg.CreatedAt.Before(b.msg.CreatedAt)
		}
		return a.seq < b.seq
	})

	if limit > 0 && len(stored) > limit {
		stored = stored[len(stored)-limit:]
	}

	result := make([]*model.Message, 0, len(stored))
	for _, s := range stored {
		result = append(result, copyMessage(s.msg))
	}
	return result, nil
}

func (r *messageRepository) DeleteByChat(ctx context.Context, chatID model.ChatID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, chatID)
	return nil
}
