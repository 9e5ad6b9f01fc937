package usecase

import (
	"context"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// ChatUseCase manages a student's conversations with agents
type ChatUseCase struct {
	repo interfaces.Repository
}

func NewChatUseCase(repo interfaces.Repository) *ChatUseCase {
	return &ChatUseCase{repo: repo}
}

// Create starts a chat with an existing agent. An empty title becomes "New Chat".
func (uc *ChatUseCase) Create(ctx context.Context, userID string, agentID model.AgentID, title string) (*model.Chat, error) {
	if userID == "" {
		return nil, validationError("user ID is required")
	}
	if agentID == "" {
		return nil, validationError("agent ID is required")
	}

	if _, err := uc.repo.Agent().Get(ctx, agentID); err != nil {
		return nil, wrapLookup(err, ErrAgentNotFound, "failed to get agent", goerr.V(AgentIDKey, agentID))
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultChatTitle
	}

	chat, err := uc.repo.Chat().Create(ctx, &model.Chat{
		UserID:  userID,
		AgentID: agentID,
		Title:   title,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat",
			goerr.V(UserIDKey, userID),
			goerr.V(AgentIDKey, agentID))
	}
	return chat, nil
}

func (uc *ChatUseCase) Get(ctx context.Context, userID string, id model.ChatID) (*model.Chat, error) {
	if userID == "" {
		return nil, validationError("user ID is required")
	}
	if id == "" {
		return nil, validationError("chat ID is required")
	}

	chat, err := uc.repo.Chat().Get(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, ErrChatNotFound, "failed to get chat", goerr.V(ChatIDKey, id))
	}
	if chat.UserID != userID {
		return nil, goerr.Wrap(ErrAccessDenied, "chat belongs to another user",
			goerr.V(ChatIDKey, id),
			goerr.V(UserIDKey, userID))
	}
	return chat, nil
}

// List returns the user's chats, most recently active first
func (uc *ChatUseCase) List(ctx context.Context, userID string) ([]*model.Chat, error) {
	if userID == "" {
		return nil, validationError("user ID is required")
	}
	chats, err := uc.repo.Chat().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chats", goerr.V(UserIDKey, userID))
	}
	return chats, nil
}

// Messages returns the full conversation in order
func (uc *ChatUseCase) Messages(ctx context.Context, userID string, id model.ChatID) ([]*model.Message, error) {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	msgs, err := uc.repo.Message().ListRecent(ctx, id, 0)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(ChatIDKey, id))
	}
	return msgs, nil
}

func (uc *ChatUseCase) Delete(ctx context.Context, userID string, id model.ChatID) error {
	if _, err := uc.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.repo.Message().DeleteByChat(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete chat messages", goerr.V(ChatIDKey, id))
	}
	if err := uc.repo.Chat().Delete(ctx, id); err != nil {
		return wrapLookup(err, ErrChatNotFound, "failed to delete chat", goerr.V(ChatIDKey, id))
	}
	return nil
}
