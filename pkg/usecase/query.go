package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Answer is the result of one answered question
type Answer struct {
	Reply            string
	UserMessage      *model.Message
	AssistantMessage *model.Message
	Passages         []Passage
}

// QueryUseCase answers student questions with retrieved course material
type QueryUseCase struct {
	repo         interfaces.Repository
	retriever    *Retriever
	generator    interfaces.Generator
	historyLimit int
	now          func() time.Time
}

func NewQueryUseCase(repo interfaces.Repository, retriever *Retriever, generator interfaces.Generator, historyLimit int) *QueryUseCase {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &QueryUseCase{
		repo:         repo,
		retriever:    retriever,
		generator:    generator,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// SendMessage answers content in a chat owned by callerID
func (uc *QueryUseCase) SendMessage(ctx context.Context, callerID string, chatID model.ChatID, content string) (*Answer, error) {
	if callerID == "" {
		return nil, validationError("caller ID is required")
	}
	if chatID == "" {
		return nil, validationError("chat ID is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationError("message content is empty", goerr.V(ChatIDKey, chatID))
	}

	chat, err := uc.repo.Chat().Get(ctx, chatID)
	if err != nil {
		return nil, wrapLookup(err, ErrChatNotFound, "failed to get chat", goerr.V(ChatIDKey, chatID))
	}
	if chat.UserID != callerID {
		return nil, goerr.Wrap(ErrAccessDenied, "chat belongs to another user",
			goerr.V(ChatIDKey, chatID),
			goerr.V(UserIDKey, callerID))
	}

	return uc.Answer(ctx, chat.AgentID, chat.ID, content)
}

// Answer runs retrieval-augmented generation for query in a chat of agentID.
// Both turns are stored only after the reply was generated.
func (uc *QueryUseCase) Answer(ctx context.Context, agentID model.AgentID, chatID model.ChatID, query string) (*Answer, error) {
	if agentID == "" {
		return nil, validationError("agent ID is required")
	}
	if chatID == "" {
		return nil, validationError("chat ID is required", goerr.V(AgentIDKey, agentID))
	}
	if strings.TrimSpace(query) == "" {
		return nil, validationError("query is empty", goerr.V(ChatIDKey, chatID))
	}
	if uc.generator == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "generator is not configured")
	}

	logger := logging.From(ctx)

	agent, err := uc.repo.Agent().Get(ctx, agentID)
	if err != nil {
		return nil, wrapLookup(err, ErrAgentNotFound, "failed to get agent", goerr.V(AgentIDKey, agentID))
	}

	chat, err := uc.repo.Chat().Get(ctx, chatID)
	if err != nil {
		return nil, wrapLookup(err, ErrChatNotFound, "failed to get chat", goerr.V(ChatIDKey, chatID))
	}
	if chat.AgentID != agentID {
		return nil, validationError("chat belongs to another agent",
			goerr.V(ChatIDKey, chatID),
			goerr.V(AgentIDKey, agentID))
	}

	passages, err := uc.retriever.Retrieve(ctx, query, agentID, 0)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve context", goerr.V(ChatIDKey, chatID))
	}

	system, err := buildSystemPrompt(agent, passages)
	if err != nil {
		return nil, err
	}

	history, err := uc.repo.Message().ListRecent(ctx, chatID, uc.historyLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load chat history", goerr.V(ChatIDKey, chatID))
	}

	messages := assembleMessages(system, history, query)
	askedAt := uc.now()

	logger.Debug("generating answer",
		"agent_id", agentID,
		"chat_id", chatID,
		"passages", len(passages),
		"history", len(history))

	reply, err := uc.generator.Generate(ctx, messages)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", ErrGenerationFailed, err), "failed to generate answer",
			goerr.V(AgentIDKey, agentID),
			goerr.V(ChatIDKey, chatID))
	}

	// the reply must sort after the question even with coarse clocks
	answeredAt := uc.now()
	if !answeredAt.After(askedAt) {
		answeredAt = askedAt.Add(time.Microsecond)
	}

	userMsg, err := uc.repo.Message().Append(ctx, &model.Message{
		ChatID:    chatID,
		Role:      types.MessageRoleUser,
		Content:   query,
		CreatedAt: askedAt,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save user message", goerr.V(ChatIDKey, chatID))
	}

	assistantMsg, err := uc.repo.Message().Append(ctx, &model.Message{
		ChatID:    chatID,
		Role:      types.MessageRoleAssistant,
		Content:   reply,
		CreatedAt: answeredAt,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save assistant message", goerr.V(ChatIDKey, chatID))
	}

	if err := uc.repo.Chat().Touch(ctx, chatID, answeredAt); err != nil {
		return nil, wrapLookup(err, ErrChatNotFound, "failed to update chat", goerr.V(ChatIDKey, chatID))
	}

	return &Answer{
		Reply:            reply,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Passages:         passages,
	}, nil
}

// assembleMessages orders the prompt as system, history oldest first, then the question
func assembleMessages(system string, history []*model.Message, query string) []model.PromptMessage {
	messages := make([]model.PromptMessage, 0, len(history)+2)
	messages = append(messages, model.PromptMessage{Role: types.MessageRoleSystem, Content: system})
	for _, m := range history {
		if !m.Role.IsChatRole() {
			continue
		}
		messages = append(messages, model.PromptMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, model.PromptMessage{Role: types.MessageRoleUser, Content: query})
	return messages
}
