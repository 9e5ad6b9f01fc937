package http

import (
	"net/http"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/errutil"
	"github.com/go-chi/chi/v5"
)

type questionCountResponse struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}

type userActivityResponse struct {
	UserID    string `json:"userId"`
	ChatCount int    `json:"chatCount"`
}

type topicCountResponse struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type agentMetricsResponse struct {
	Agent                  agentResponse           `json:"agent"`
	TotalChats             int                     `json:"totalChats"`
	TotalMessages          int                     `json:"totalMessages"`
	AverageMessagesPerChat float64                 `json:"averageMessagesPerChat"`
	TopQuestions           []questionCountResponse `json:"topQuestions"`
	MostActiveUsers        []userActivityResponse  `json:"mostActiveUsers"`
	PopularTopics          []topicCountResponse    `json:"popularTopics"`
}

func toAgentMetricsResponse(m *usecase.AgentMetrics) agentMetricsResponse {
	resp := agentMetricsResponse{
		Agent:                  toAgentResponse(m.Agent),
		TotalChats:             m.TotalChats,
		TotalMessages:          m.TotalMessages,
		AverageMessagesPerChat: m.AverageMessagesPerChat,
		TopQuestions:           make([]questionCountResponse, 0, len(m.TopQuestions)),
		MostActiveUsers:        make([]userActivityResponse, 0, len(m.MostActiveUsers)),
		PopularTopics:          make([]topicCountResponse, 0, len(m.PopularTopics)),
	}
	for _, q := range m.TopQuestions {
		resp.TopQuestions = append(resp.TopQuestions, questionCountResponse{Question: q.Key, Count: q.Count})
	}
	for _, u := range m.MostActiveUsers {
		resp.MostActiveUsers = append(resp.MostActiveUsers, userActivityResponse{UserID: u.Key, ChatCount: u.Count})
	}
	for _, t := range m.PopularTopics {
		resp.PopularTopics = append(resp.PopularTopics, topicCountResponse{Topic: t.Key, Count: t.Count})
	}
	return resp
}

type agentStatsResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Subject       string `json:"subject"`
	ChatCount     int    `json:"chatCount"`
	DocumentCount int    `json:"documentCount"`
}

type ownerStatsResponse struct {
	AgentCount    int                  `json:"agentCount"`
	DocumentCount int                  `json:"documentCount"`
	ChatCount     int                  `json:"chatCount"`
	StudentCount  int                  `json:"studentCount"`
	AgentStats    []agentStatsResponse `json:"agentStats"`
}

func toOwnerStatsResponse(s *usecase.OwnerStats) ownerStatsResponse {
	resp := ownerStatsResponse{
		AgentCount:    s.AgentCount,
		DocumentCount: s.DocumentCount,
		ChatCount:     s.ChatCount,
		StudentCount:  s.StudentCount,
		AgentStats:    make([]agentStatsResponse, 0, len(s.Agents)),
	}
	for _, a := range s.Agents {
		resp.AgentStats = append(resp.AgentStats, agentStatsResponse{
			ID:            a.Agent.ID.String(),
			Name:          a.Agent.Name,
			Subject:       a.Agent.Subject,
			ChatCount:     a.ChatCount,
			DocumentCount: a.DocumentCount,
		})
	}
	return resp
}

func (s *Server) agentMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	metrics, err := s.uc.Analytics.AgentMetrics(ctx, callerFrom(ctx), model.AgentID(chi.URLParam(r, "agentID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toAgentMetricsResponse(metrics))
}

func (s *Server) ownerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.uc.Analytics.OwnerStats(ctx, callerFrom(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toOwnerStatsResponse(stats))
}
