package usecase_test

import (
	"context"
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestChatUseCase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	agent := env.createAgent(t, "teacher-1")

	t.Run("create requires an existing agent", func(t *testing.T) {
		_, err := env.uc.Chat.Create(ctx, "student-1", "missing", "Cells")
		gt.Error(t, err).Is(usecase.ErrAgentNotFound)
	})

	chat, err := env.uc.Chat.Create(ctx, "student-1", agent.ID, "  Cells ")
	gt.NoError(t, err).Required()
	gt.Value(t, chat.Title).Equal("Cells")

	t.Run("owner reads chat and messages", func(t *testing.T) {
		_, err := env.uc.Query.SendMessage(ctx, "student-1", chat.ID, "What is a nucleus?")
		gt.NoError(t, err).Required()

		got, err := env.uc.Chat.Get(ctx, "student-1", chat.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AgentID).Equal(agent.ID)

		msgs, err := env.uc.Chat.Messages(ctx, "student-1", chat.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(2)
	})

	t.Run("other users are denied", func(t *testing.T) {
		_, err := env.uc.Chat.Get(ctx, "student-2", chat.ID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
		_, err = env.uc.Chat.Messages(ctx, "student-2", chat.ID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
		gt.Error(t, env.uc.Chat.Delete(ctx, "student-2", chat.ID)).Is(usecase.ErrAccessDenied)
	})

	t.Run("list is per user", func(t *testing.T) {
		_, err := env.uc.Chat.Create(ctx, "student-2", agent.ID, "")
		gt.NoError(t, err).Required()

		chats, err := env.uc.Chat.List(ctx, "student-1")
		gt.NoError(t, err).Required()
		gt.Array(t, chats).Length(1).Required()
		gt.Value(t, chats[0].ID).Equal(chat.ID)
	})

	t.Run("delete removes messages", func(t *testing.T) {
		gt.NoError(t, env.uc.Chat.Delete(ctx, "student-1", chat.ID)).Required()

		_, err := env.uc.Chat.Get(ctx, "student-1", chat.ID)
		gt.Error(t, err).Is(usecase.ErrChatNotFound)

		msgs, err := env.repo.Message().ListRecent(ctx, chat.ID, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})
}

func TestDocumentUseCase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	agent := env.createAgent(t, "teacher-1")

	keep, err := env.repo.Document().Create(ctx, &model.Document{AgentID: agent.ID, Title: "Keep"})
	gt.NoError(t, err).Required()
	drop, err := env.repo.Document().Create(ctx, &model.Document{AgentID: agent.ID, Title: "Drop", ChunkCount: 2})
	gt.NoError(t, err).Required()

	env.addVector(t, "k0", agent.ID, keep.ID, "keep me")
	env.addVector(t, "d0", agent.ID, drop.ID, "drop me")
	env.addVector(t, "d1", agent.ID, drop.ID, "drop me too")

	t.Run("list requires ownership", func(t *testing.T) {
		docs, err := env.uc.Document.List(ctx, "teacher-1", agent.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, docs).Length(2)

		_, err = env.uc.Document.List(ctx, "student-1", agent.ID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("delete removes every chunk vector", func(t *testing.T) {
		gt.Error(t, env.uc.Document.Delete(ctx, "student-1", drop.ID)).Is(usecase.ErrAccessDenied)

		gt.NoError(t, env.uc.Document.Delete(ctx, "teacher-1", drop.ID)).Required()
		gt.Array(t, env.vectorIDs(t, drop.ID)).Length(0)
		gt.Array(t, env.vectorIDs(t, keep.ID)).Length(1)

		_, err := env.uc.Document.Get(ctx, "teacher-1", drop.ID)
		gt.Error(t, err).Is(usecase.ErrDocumentNotFound)
	})
}
