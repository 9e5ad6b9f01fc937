package model

import (
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/google/uuid"
)

// DefaultChatTitle is used when a chat is created without a title
const DefaultChatTitle = "New Chat"

// ChatID is a UUID-based identifier for Chat
type ChatID string

// NewChatID generates a new UUID v4 ChatID
func NewChatID() ChatID {
	return ChatID(uuid.New().String())
}

func (id ChatID) String() string {
	return string(id)
}

// Chat is a conversation between one student and one agent.
// UpdatedAt is bumped every time a question is answered.
type Chat struct {
	ID        ChatID
	UserID    string
	AgentID   AgentID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MessageID is a UUID-based identifier for Message
type MessageID string

// NewMessageID generates a new UUID v4 MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// Message is an append-only chat turn. CreatedAt defines conversation order.
type Message struct {
	ID        MessageID
	ChatID    ChatID
	Role      types.MessageRole
	Content   string
	CreatedAt time.Time
}

// PromptMessage is one entry of the sequence sent to a generation provider
type PromptMessage struct {
	Role    types.MessageRole
	Content string
}
