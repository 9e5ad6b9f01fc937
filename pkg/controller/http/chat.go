package http

import (
	"net/http"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/errutil"
	"github.com/go-chi/chi/v5"
)

func (s *Server) createChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		AgentID string `json:"agentId"`
		Title   string `json:"title"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	chat, err := s.uc.Chat.Create(ctx, callerFrom(ctx), model.AgentID(req.AgentID), req.Title)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, toChatResponse(chat))
}

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chats, err := s.uc.Chat.List(ctx, callerFrom(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := make([]chatResponse, 0, len(chats))
	for _, c := range chats {
		resp = append(resp, toChatResponse(c))
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"chats": resp})
}

func (s *Server) getChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chat, err := s.uc.Chat.Get(ctx, callerFrom(ctx), model.ChatID(chi.URLParam(r, "chatID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toChatResponse(chat))
}

func (s *Server) deleteChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.Chat.Delete(ctx, callerFrom(ctx), model.ChatID(chi.URLParam(r, "chatID"))); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msgs, err := s.uc.Chat.Messages(ctx, callerFrom(ctx), model.ChatID(chi.URLParam(r, "chatID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"messages": toMessageResponses(msgs...)})
}

// sendMessage answers a question and returns the stored user and assistant turns
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	answer, err := s.uc.Query.SendMessage(ctx, callerFrom(ctx), model.ChatID(chi.URLParam(r, "chatID")), req.Content)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"messages": toMessageResponses(answer.UserMessage, answer.AssistantMessage),
	})
}
