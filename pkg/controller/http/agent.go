package http

import (
	"net/http"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/errutil"
	"github.com/go-chi/chi/v5"
)

type agentRequest struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

func (req agentRequest) input() usecase.AgentInput {
	return usecase.AgentInput{
		Name:        req.Name,
		Subject:     req.Subject,
		Description: req.Description,
	}
}

func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req agentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	agent, err := s.uc.Agent.Create(ctx, callerFrom(ctx), req.input())
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toAgentResponse(agent))
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agents, err := s.uc.Agent.List(ctx, callerFrom(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := make([]agentResponse, 0, len(agents))
	for _, a := range agents {
		resp = append(resp, toAgentResponse(a))
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"agents": resp})
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := s.uc.Agent.Get(ctx, model.AgentID(chi.URLParam(r, "agentID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toAgentResponse(agent))
}

func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req agentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	agent, err := s.uc.Agent.Update(ctx, callerFrom(ctx), model.AgentID(chi.URLParam(r, "agentID")), req.input())
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toAgentResponse(agent))
}

func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.Agent.Delete(ctx, callerFrom(ctx), model.AgentID(chi.URLParam(r, "agentID"))); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
