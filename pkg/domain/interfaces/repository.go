package interfaces

import (
	"context"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
)

// Repository defines the interface for metadata persistence
type Repository interface {
	Agent() AgentRepository
	Document() DocumentRepository
	Chat() ChatRepository
	Message() MessageRepository
	Close() error
}

// AgentRepository stores agent personas
type AgentRepository interface {
	Create(ctx context.Context, agent *model.Agent) (*model.Agent, error)
	Get(ctx context.Context, id model.AgentID) (*model.Agent, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Agent, error)
	Update(ctx context.Context, agent *model.Agent) (*model.Agent, error)
	Delete(ctx context.Context, id model.AgentID) error
}

// DocumentRepository stores ingested document records
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)
	Get(ctx context.Context, id model.DocumentID) (*model.Document, error)
	// ListByAgent returns documents of an agent, newest first
	ListByAgent(ctx context.Context, agentID model.AgentID) ([]*model.Document, error)
	// MarkReady flags a document whose chunks are all stored
	MarkReady(ctx context.Context, id model.DocumentID) error
	Delete(ctx context.Context, id model.DocumentID) error
}

// ChatRepository stores conversations
type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) (*model.Chat, error)
	Get(ctx context.Context, id model.ChatID) (*model.Chat, error)
	// ListByUser returns chats of a user, most recently active first
	ListByUser(ctx context.Context, userID string) ([]*model.Chat, error)
	// ListByAgent returns chats held with an agent, most recently active first
	ListByAgent(ctx context.Context, agentID model.AgentID) ([]*model.Chat, error)
	// Touch sets the last activity timestamp
	Touch(ctx context.Context, id model.ChatID, at time.Time) error
	Delete(ctx context.Context, id model.ChatID) error
}

// MessageRepository stores append-only chat turns
type MessageRepository interface {
	// Append stores msg. A zero CreatedAt is set to the current time.
	Append(ctx context.Context, msg *model.Message) (*model.Message, error)
	// ListRecent returns the latest limit turns of a chat, oldest first
	ListRecent(ctx context.Context, chatID model.ChatID, limit int) ([]*model.Message, error)
	DeleteByChat(ctx context.Context, chatID model.ChatID) error
}
