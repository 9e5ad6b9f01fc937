package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

const gollemProvider = "gollem"

// GollemClient serves embeddings and generation through a gollem LLM client (Gemini by default)
type GollemClient struct {
	client    gollem.LLMClient
	dimension int
}

var (
	_ interfaces.Embedder  = &GollemClient{}
	_ interfaces.Generator = &GollemClient{}
)

type GollemOption func(*GollemClient)

// WithGollemDimension overrides the embedding dimension requested from the provider
func WithGollemDimension(dim int) GollemOption {
	return func(c *GollemClient) {
		if dim > 0 {
			c.dimension = dim
		}
	}
}

func NewGollem(client gollem.LLMClient, opts ...GollemOption) (*GollemClient, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &GollemClient{
		client:    client,
		dimension: DefaultGeminiDimension,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *GollemClient) Dimension() int {
	return c.dimension
}

// Embed returns the embedding of text.
func (c *GollemClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.NewProviderError(gollemProvider, false, ErrEmptyText)
	}

	embeddings, err := c.client.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, model.NewProviderError(gollemProvider, gollemTransient(ctx, err),
			goerr.Wrap(err, "failed to generate embedding", goerr.V("dimension", c.dimension)))
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, model.NewProviderError(gollemProvider, false, goerr.New("no embedding returned"))
	}

	// Convert float64 to float32
	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}

// gollemTransient reports whether a gollem failure may succeed on retry. gollem
// exposes no status code, so every failure counts as transient unless the
// caller's context is done or the call was canceled.
func gollemTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// Generate sends system messages as the session system prompt and the
// conversation as a single text input.
func (c *GollemClient) Generate(ctx context.Context, messages []model.PromptMessage) (string, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return "", model.NewProviderError(gollemProvider, false, goerr.New("no user message to answer"))
	}

	var opts []gollem.SessionOption
	if system != "" {
		opts = append(opts, gollem.WithSessionSystemPrompt(system))
	}

	session, err := c.client.NewSession(ctx, opts...)
	if err != nil {
		return "", model.NewProviderError(gollemProvider, gollemTransient(ctx, err),
			goerr.Wrap(err, "failed to create LLM session"))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(transcript(turns)))
	if err != nil {
		return "", model.NewProviderError(gollemProvider, gollemTransient(ctx, err),
			goerr.Wrap(err, "failed to generate content"))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", model.NewProviderError(gollemProvider, false, goerr.New("empty response from LLM"))
	}

	return strings.Join(resp.Texts, ""), nil
}
