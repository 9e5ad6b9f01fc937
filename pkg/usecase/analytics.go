package usecase

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	TopQuestionLimit    = 5
	MostActiveUserLimit = 5
	PopularTopicLimit   = 10

	// questions sharing their first words are counted as the same question
	questionKeyWords = 5
)

// RankedCount is one entry of a frequency ranking
type RankedCount struct {
	Key   string
	Count int
}

// AgentMetrics summarizes how students use one agent
type AgentMetrics struct {
	Agent                  *model.Agent
	TotalChats             int
	TotalMessages          int
	AverageMessagesPerChat float64
	TopQuestions           []RankedCount
	MostActiveUsers        []RankedCount
	PopularTopics          []RankedCount
}

// AgentSummary counts the chats and documents of one agent
type AgentSummary struct {
	Agent         *model.Agent
	ChatCount     int
	DocumentCount int
}

// OwnerStats totals everything behind the agents of one owner
type OwnerStats struct {
	AgentCount    int
	DocumentCount int
	ChatCount     int
	StudentCount  int
	Agents        []AgentSummary
}

// AnalyticsUseCase reports usage of agents to their owners
type AnalyticsUseCase struct {
	repo interfaces.Repository
}

func NewAnalyticsUseCase(repo interfaces.Repository) *AnalyticsUseCase {
	return &AnalyticsUseCase{repo: repo}
}

// AgentMetrics computes usage metrics of an agent owned by callerID
func (uc *AnalyticsUseCase) AgentMetrics(ctx context.Context, callerID string, agentID model.AgentID) (*AgentMetrics, error) {
	agent, err := ownedAgent(ctx, uc.repo, callerID, agentID)
	if err != nil {
		return nil, err
	}

	chats, err := uc.repo.Chat().ListByAgent(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chats", goerr.V(AgentIDKey, agentID))
	}

	questions := make(map[string]int)
	users := make(map[string]int)
	topics := make(map[string]int)
	metrics := &AgentMetrics{Agent: agent, TotalChats: len(chats)}

	for _, chat := range chats {
		users[chat.UserID]++
		topics[chat.Title]++

		messages, err := uc.repo.Message().ListRecent(ctx, chat.ID, 0)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list messages",
				goerr.V(AgentIDKey, agentID),
				goerr.V(ChatIDKey, chat.ID))
		}
		metrics.TotalMessages += len(messages)

		for _, m := range messages {
			if m.Role != types.MessageRoleUser {
				continue
			}
			if key := questionKey(m.Content); key != "" {
				questions[key]++
			}
		}
	}

	if metrics.TotalChats > 0 {
		avg := float64(metrics.TotalMessages) / float64(metrics.TotalChats)
		metrics.AverageMessagesPerChat = math.Round(avg*100) / 100
	}
	metrics.TopQuestions = rank(questions, TopQuestionLimit)
	metrics.MostActiveUsers = rank(users, MostActiveUserLimit)
	metrics.PopularTopics = rank(topics, PopularTopicLimit)

	return metrics, nil
}

// OwnerStats totals agents, documents, chats and distinct students of callerID
func (uc *AnalyticsUseCase) OwnerStats(ctx context.Context, callerID string) (*OwnerStats, error) {
	if callerID == "" {
		return nil, validationError("caller ID is required")
	}

	agents, err := uc.repo.Agent().ListByOwner(ctx, callerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agents", goerr.V(UserIDKey, callerID))
	}

	stats := &OwnerStats{
		AgentCount: len(agents),
		Agents:     make([]AgentSummary, 0, len(agents)),
	}
	students := make(map[string]struct{})

	for _, agent := range agents {
		docs, err := uc.repo.Document().ListByAgent(ctx, agent.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list documents", goerr.V(AgentIDKey, agent.ID))
		}
		chats, err := uc.repo.Chat().ListByAgent(ctx, agent.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list chats", goerr.V(AgentIDKey, agent.ID))
		}

		for _, chat := range chats {
			students[chat.UserID] = struct{}{}
		}
		stats.DocumentCount += len(docs)
		stats.ChatCount += len(chats)
		stats.Agents = append(stats.Agents, AgentSummary{
			Agent:         agent,
			ChatCount:     len(chats),
			DocumentCount: len(docs),
		})
	}
	stats.StudentCount = len(students)

	slices.SortFunc(stats.Agents, func(a, b AgentSummary) int {
		return cmp.Or(
			strings.Compare(a.Agent.Name, b.Agent.Name),
			strings.Compare(a.Agent.ID.String(), b.Agent.ID.String()),
		)
	})
	return stats, nil
}

// questionKey returns the first words of a question
func questionKey(content string) string {
	words := strings.Fields(content)
	if len(words) > questionKeyWords {
		words = words[:questionKeyWords]
	}
	return strings.Join(words, " ")
}

// rank orders counts by frequency, ties by key, and keeps the first limit entries
func rank(counts map[string]int, limit int) []RankedCount {
	ranked := make([]RankedCount, 0, len(counts))
	for k, n := range counts {
		ranked = append(ranked, RankedCount{Key: k, Count: n})
	}
	slices.SortFunc(ranked, func(a, b RankedCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), strings.Compare(a.Key, b.Key))
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
