package usecase_test

import (
	"context"
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func (e *testEnv) chatWith(t *testing.T, userID string, agentID model.AgentID, title string, questions ...string) *model.Chat {
	t.Helper()
	ctx := context.Background()

	chat, err := e.uc.Chat.Create(ctx, userID, agentID, title)
	gt.NoError(t, err).Required()
	for _, q := range questions {
		_, err := e.uc.Query.SendMessage(ctx, userID, chat.ID, q)
		gt.NoError(t, err).Required()
	}
	return chat
}

func TestAnalytics_AgentMetrics(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	agent := env.createAgent(t, "teacher-1")
	other := env.createAgent(t, "teacher-1")

	env.chatWith(t, "student-1", agent.ID, "Cells",
		"What do mitochondria do in the cell?",
		"What do mitochondria do in plants?")
	env.chatWith(t, "student-1", agent.ID, "Energy", "How is ATP made?")
	env.chatWith(t, "student-2", agent.ID, "Cells", "What do mitochondria do in animals?")
	env.chatWith(t, "student-3", other.ID, "Elsewhere", "Unrelated question here")

	metrics, err := env.uc.Analytics.AgentMetrics(ctx, "teacher-1", agent.ID)
	gt.NoError(t, err).Required()

	gt.Value(t, metrics.Agent.ID).Equal(agent.ID)
	gt.Number(t, metrics.TotalChats).Equal(3)
	gt.Number(t, metrics.TotalMessages).Equal(8)
	gt.Value(t, metrics.AverageMessagesPerChat).Equal(2.67)

	t.Run("questions are grouped by their first words", func(t *testing.T) {
		gt.Array(t, metrics.TopQuestions).Length(2).Required()
		gt.Value(t, metrics.TopQuestions[0]).Equal(usecase.RankedCount{Key: "What do mitochondria do in", Count: 3})
		gt.Value(t, metrics.TopQuestions[1]).Equal(usecase.RankedCount{Key: "How is ATP made?", Count: 1})
	})

	t.Run("users ranked by chat count", func(t *testing.T) {
		gt.Array(t, metrics.MostActiveUsers).Length(2).Required()
		gt.Value(t, metrics.MostActiveUsers[0]).Equal(usecase.RankedCount{Key: "student-1", Count: 2})
		gt.Value(t, metrics.MostActiveUsers[1]).Equal(usecase.RankedCount{Key: "student-2", Count: 1})
	})

	t.Run("topics ranked by chat title", func(t *testing.T) {
		gt.Array(t, metrics.PopularTopics).Length(2).Required()
		gt.Value(t, metrics.PopularTopics[0]).Equal(usecase.RankedCount{Key: "Cells", Count: 2})
		gt.Value(t, metrics.PopularTopics[1]).Equal(usecase.RankedCount{Key: "Energy", Count: 1})
	})

	t.Run("agent without chats", func(t *testing.T) {
		empty := env.createAgent(t, "teacher-1")
		m, err := env.uc.Analytics.AgentMetrics(ctx, "teacher-1", empty.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, m.TotalChats).Equal(0)
		gt.Number(t, m.TotalMessages).Equal(0)
		gt.Value(t, m.AverageMessagesPerChat).Equal(0.0)
		gt.Array(t, m.TopQuestions).Length(0)
	})

	t.Run("only the owner may read metrics", func(t *testing.T) {
		_, err := env.uc.Analytics.AgentMetrics(ctx, "student-1", agent.ID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)

		_, err = env.uc.Analytics.AgentMetrics(ctx, "teacher-1", "missing")
		gt.Error(t, err).Is(usecase.ErrAgentNotFound)

		_, err = env.uc.Analytics.AgentMetrics(ctx, "", agent.ID)
		gt.Error(t, err).Is(usecase.ErrValidation)
	})
}

func TestAnalytics_TopQuestionsAreBounded(t *testing.T) {
	env := newTestEnv(t)
	agent := env.createAgent(t, "teacher-1")

	env.chatWith(t, "student-1", agent.ID, "Many",
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf")

	metrics, err := env.uc.Analytics.AgentMetrics(context.Background(), "teacher-1", agent.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, metrics.TopQuestions).Length(usecase.TopQuestionLimit).Required()
	// equal counts are ordered by question
	gt.Value(t, metrics.TopQuestions[0].Key).Equal("alpha")
	gt.Value(t, metrics.TopQuestions[4].Key).Equal("echo")
}

func TestAnalytics_OwnerStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	zoology, err := env.uc.Agent.Create(ctx, "teacher-1", usecase.AgentInput{Name: "Zoology", Subject: "Biology"})
	gt.NoError(t, err).Required()
	botany, err := env.uc.Agent.Create(ctx, "teacher-1", usecase.AgentInput{Name: "Botany", Subject: "Biology"})
	gt.NoError(t, err).Required()
	foreign, err := env.uc.Agent.Create(ctx, "teacher-2", usecase.AgentInput{Name: "Physics", Subject: "Physics"})
	gt.NoError(t, err).Required()

	for _, agentID := range []model.AgentID{zoology.ID, zoology.ID, botany.ID, foreign.ID} {
		_, err := env.repo.Document().Create(ctx, &model.Document{AgentID: agentID, Title: "notes"})
		gt.NoError(t, err).Required()
	}

	env.chatWith(t, "student-1", zoology.ID, "Lions")
	env.chatWith(t, "student-2", zoology.ID, "Tigers")
	env.chatWith(t, "student-1", botany.ID, "Ferns")
	env.chatWith(t, "student-3", foreign.ID, "Gravity")

	stats, err := env.uc.Analytics.OwnerStats(ctx, "teacher-1")
	gt.NoError(t, err).Required()
	gt.Number(t, stats.AgentCount).Equal(2)
	gt.Number(t, stats.DocumentCount).Equal(3)
	gt.Number(t, stats.ChatCount).Equal(3)
	gt.Number(t, stats.StudentCount).Equal(2)

	gt.Array(t, stats.Agents).Length(2).Required()
	gt.Value(t, stats.Agents[0].Agent.ID).Equal(botany.ID)
	gt.Number(t, stats.Agents[0].ChatCount).Equal(1)
	gt.Number(t, stats.Agents[0].DocumentCount).Equal(1)
	gt.Value(t, stats.Agents[1].Agent.ID).Equal(zoology.ID)
	gt.Number(t, stats.Agents[1].ChatCount).Equal(2)
	gt.Number(t, stats.Agents[1].DocumentCount).Equal(2)

	t.Run("owner without agents", func(t *testing.T) {
		empty, err := env.uc.Analytics.OwnerStats(ctx, "nobody")
		gt.NoError(t, err).Required()
		gt.Number(t, empty.AgentCount).Equal(0)
		gt.Array(t, empty.Agents).Length(0)
	})

	t.Run("caller is required", func(t *testing.T) {
		_, err := env.uc.Analytics.OwnerStats(ctx, "")
		gt.Error(t, err).Is(usecase.ErrValidation)
	})
}
