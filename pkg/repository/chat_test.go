package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func runChatRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create applies default title", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		chat, err := repo.Chat().Create(ctx, &model.Chat{UserID: uniqueID("student"), AgentID: "agent"})
		gt.NoError(t, err).Required()
		gt.Value(t, chat.Title).Equal(model.DefaultChatTitle)

		got, err := repo.Chat().Get(ctx, chat.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.UserID).Equal(chat.UserID)
	})

	t.Run("Touch bumps UpdatedAt and reorders ListByUser", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := uniqueID("student")

		first, err := repo.Chat().Create(ctx, &model.Chat{UserID: user, AgentID: "agent", Title: "first"})
		gt.NoError(t, err).Required()
		second, err := repo.Chat().Create(ctx, &model.Chat{UserID: user, AgentID: "agent", Title: "second"})
		gt.NoError(t, err).Required()

		touchedAt := time.Now().UTC().Add(time.Hour)
		gt.NoError(t, repo.Chat().Touch(ctx, first.ID, touchedAt)).Required()

		chats, err := repo.Chat().ListByUser(ctx, user)
		gt.NoError(t, err).Required()
		gt.Array(t, chats).Length(2).Required()
		gt.Value(t, chats[0].ID).Equal(first.ID)
		gt.Value(t, chats[1].ID).Equal(second.ID)
	})

	t.Run("ListByAgent returns only chats of that agent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		agentID := model.AgentID(uniqueID("agent"))

		a, err := repo.Chat().Create(ctx, &model.Chat{UserID: uniqueID("student"), AgentID: agentID, Title: "a"})
		gt.NoError(t, err).Required()
		b, err := repo.Chat().Create(ctx, &model.Chat{UserID: uniqueID("student"), AgentID: agentID, Title: "b"})
		gt.NoError(t, err).Required()
		_, err = repo.Chat().Create(ctx, &model.Chat{UserID: uniqueID("student"), AgentID: model.AgentID(uniqueID("other")), Title: "c"})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Chat().Touch(ctx, a.ID, time.Now().UTC().Add(time.Hour))).Required()

		chats, err := repo.Chat().ListByAgent(ctx, agentID)
		gt.NoError(t, err).Required()
		gt.Array(t, chats).Length(2).Required()
		gt.Value(t, chats[0].ID).Equal(a.ID)
		gt.Value(t, chats[1].ID).Equal(b.ID)
	})

	t.Run("Touch unknown chat returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Chat().Touch(context.Background(), model.ChatID(uniqueID("missing")), time.Now())
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("Delete removes chat", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		chat, err := repo.Chat().Create(ctx, &model.Chat{UserID: uniqueID("student"), AgentID: "agent"})
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Chat().Delete(ctx, chat.ID)).Required()

		_, err = repo.Chat().Get(ctx, chat.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func runMessageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("ListRecent returns latest turns oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		chatID := model.ChatID(uniqueID("chat"))
		base := time.Now().UTC().Truncate(time.Second)

		for i := 0; i < 20; i++ {
			role := types.MessageRoleUser
			if i%2 == 1 {
				role = types.MessageRoleAssistant
			}
			_, err := repo.Message().Append(ctx, &model.Message{
				ChatID:    chatID,
				Role:      role,
				Content:   fmt.Sprintf("turn %d", i),
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			})
			gt.NoError(t, err).Required()
		}

		msgs, err := repo.Message().ListRecent(ctx, chatID, 15)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(15).Required()
		gt.Value(t, msgs[0].Content).Equal("turn 5")
		gt.Value(t, msgs[14].Content).Equal("turn 19")
		gt.Value(t, msgs[14].Role).Equal(types.MessageRoleAssistant)
	})

	t.Run("ListRecent with fewer turns than limit returns all", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		chatID := model.ChatID(uniqueID("chat"))

		_, err := repo.Message().Append(ctx, &model.Message{ChatID: chatID, Role: types.MessageRoleUser, Content: "hi"})
		gt.NoError(t, err).Required()

		msgs, err := repo.Message().ListRecent(ctx, chatID, 15)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1)
	})

	t.Run("ListRecent on empty chat returns empty", func(t *testing.T) {
		repo := newRepo(t)
		msgs, err := repo.Message().ListRecent(context.Background(), model.ChatID(uniqueID("chat")), 15)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})

	t.Run("DeleteByChat removes all turns", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		chatID := model.ChatID(uniqueID("chat"))

		for i := 0; i < 3; i++ {
			_, err := repo.Message().Append(ctx, &model.Message{ChatID: chatID, Role: types.MessageRoleUser, Content: "q"})
			gt.NoError(t, err).Required()
		}
		gt.NoError(t, repo.Message().DeleteByChat(ctx, chatID)).Required()

		msgs, err := repo.Message().ListRecent(ctx, chatID, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(0)
	})
}

func TestMemoryChatRepository(t *testing.T) {
	runChatRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreChatRepository(t *testing.T) {
	runChatRepositoryTest(t, newFirestoreRepository)
}

func TestMemoryMessageRepository(t *testing.T) {
	runMessageRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreMessageRepository(t *testing.T) {
	runMessageRepositoryTest(t, newFirestoreRepository)
}
