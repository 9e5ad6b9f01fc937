package usecase

import (
	"context"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Passage is a retrieved chunk ready to be placed into a prompt
type Passage struct {
	Content    string
	DocumentID model.DocumentID
	Title      string
	ChunkIndex int
	Score      float32
}

// Retriever finds the chunks of one agent most similar to a question
type Retriever struct {
	embedder    interfaces.Embedder
	store       interfaces.VectorStore
	defaultTopK int
}

func NewRetriever(embedder interfaces.Embedder, store interfaces.VectorStore, defaultTopK int) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Retriever{
		embedder:    embedder,
		store:       store,
		defaultTopK: defaultTopK,
	}
}

// Retrieve returns at most topK passages of agentID in descending score order.
// A non-positive topK uses the default.
func (r *Retriever) Retrieve(ctx context.Context, query string, agentID model.AgentID, topK int) ([]Passage, error) {
	if agentID == "" {
		return nil, validationError("agent ID is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, validationError("query is empty", goerr.V(AgentIDKey, agentID))
	}
	if r.embedder == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "embedder is not configured")
	}
	if topK <= 0 {
		topK = r.defaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.V(AgentIDKey, agentID))
	}

	filter := model.VectorFilter{AgentID: agentID}
	matches, err := r.store.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query vector store", goerr.V(AgentIDKey, agentID))
	}

	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		// never leak another agent's material even if a backend ignores the filter
		if !filter.Match(m.Metadata) {
			continue
		}
		passages = append(passages, Passage{
			Content:    m.Metadata.Content,
			DocumentID: m.Metadata.DocumentID,
			Title:      m.Metadata.Title,
			ChunkIndex: m.Metadata.ChunkIndex,
			Score:      m.Score,
		})
		if len(passages) == topK {
			break
		}
	}

	return passages, nil
}
