package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const maxJSONBody = 1 << 20

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// decodeJSON reads a JSON body into v. Malformed bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "malformed request body", goerr.V("cause", err.Error()))
	}
	return nil
}

type agentResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toAgentResponse(a *model.Agent) agentResponse {
	return agentResponse{
		ID:          a.ID.String(),
		OwnerID:     a.OwnerID,
		Name:        a.Name,
		Subject:     a.Subject,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type documentResponse struct {
	ID         string    `json:"id"`
	AgentID    string    `json:"agentId"`
	Title      string    `json:"title"`
	FileName   string    `json:"fileName"`
	ChunkCount int       `json:"chunkCount"`
	Ready      bool      `json:"ready"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toDocumentResponse(d *model.Document) documentResponse {
	return documentResponse{
		ID:         d.ID.String(),
		AgentID:    d.AgentID.String(),
		Title:      d.Title,
		FileName:   d.FileName,
		ChunkCount: d.ChunkCount,
		Ready:      d.Ready,
		CreatedAt:  d.CreatedAt,
	}
}

type jobStatusResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Error      string `json:"error,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
}

func toJobStatusResponse(v *model.JobStatusView) jobStatusResponse {
	return jobStatusResponse{
		ID:         v.ID,
		Status:     v.Status.String(),
		Progress:   v.Progress,
		Error:      v.Error,
		DocumentID: v.DocumentID.String(),
	}
}

type chatResponse struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toChatResponse(c *model.Chat) chatResponse {
	return chatResponse{
		ID:        c.ID.String(),
		AgentID:   c.AgentID.String(),
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMessageResponses(msgs ...*model.Message) []messageResponse {
	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{
			ID:        string(m.ID),
			Role:      m.Role.String(),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return resp
}
