package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
)

const openaiProvider = "openai"

// OpenAIClient serves embeddings and chat completions from the OpenAI API
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimension      int
	requestDim     int
	temperature    float32
	maxTokens      int
}

var (
	_ interfaces.Embedder  = &OpenAIClient{}
	_ interfaces.Generator = &OpenAIClient{}
)

type openaiSettings struct {
	baseURL        string
	httpClient     *http.Client
	chatModel      string
	embeddingModel string
	dimension      int
	temperature    float32
	maxTokens      int
}

type OpenAIOption func(*openaiSettings)

func WithOpenAIChatModel(name string) OpenAIOption {
	return func(s *openaiSettings) {
		if name != "" {
			s.chatModel = name
		}
	}
}

func WithOpenAIEmbeddingModel(name string) OpenAIOption {
	return func(s *openaiSettings) {
		if name != "" {
			s.embeddingModel = name
		}
	}
}

// WithOpenAIDimension requests shortened embeddings. Zero keeps the model's native size.
func WithOpenAIDimension(dim int) OpenAIOption {
	return func(s *openaiSettings) {
		if dim > 0 {
			s.dimension = dim
		}
	}
}

func WithOpenAITemperature(t float32) OpenAIOption {
	return func(s *openaiSettings) {
		s.temperature = t
	}
}

func WithOpenAIMaxTokens(n int) OpenAIOption {
	return func(s *openaiSettings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(s *openaiSettings) {
		s.baseURL = url
	}
}

func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(s *openaiSettings) {
		s.httpClient = client
	}
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}

	s := &openaiSettings{
		chatModel:      openai.GPT4o,
		embeddingModel: string(openai.LargeEmbedding3),
		temperature:    DefaultTemperature,
		maxTokens:      DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg := openai.DefaultConfig(apiKey)
	if s.baseURL != "" {
		cfg.BaseURL = s.baseURL
	}
	if s.httpClient != nil {
		cfg.HTTPClient = s.httpClient
	}

	c := &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		chatModel:      s.chatModel,
		embeddingModel: openai.EmbeddingModel(s.embeddingModel),
		dimension:      DefaultOpenAIDimension,
		requestDim:     s.dimension,
		temperature:    s.temperature,
		maxTokens:      s.maxTokens,
	}
	if s.dimension > 0 {
		c.dimension = s.dimension
	}
	return c, nil
}

func (c *OpenAIClient) Dimension() int {
	return c.dimension
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.NewProviderError(openaiProvider, false, ErrEmptyText)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      []string{text},
		Model:      c.embeddingModel,
		Dimensions: c.requestDim,
	})
	if err != nil {
		return nil, c.providerError(ctx, err, "failed to create embedding")
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, model.NewProviderError(openaiProvider, false, goerr.New("no embedding returned",
			goerr.V("model", c.embeddingModel)))
	}

	return resp.Data[0].Embedding, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []model.PromptMessage) (string, error) {
	if len(messages) == 0 {
		return "", model.NewProviderError(openaiProvider, false, goerr.New("no messages to send"))
	}

	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openaiRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", c.providerError(ctx, err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", model.NewProviderError(openaiProvider, false, goerr.New("no completion choices returned",
			goerr.V("model", c.chatModel)))
	}

	return resp.Choices[0].Message.Content, nil
}

func openaiRole(role types.MessageRole) string {
	switch role {
	case types.MessageRoleSystem:
		return openai.ChatMessageRoleSystem
	case types.MessageRoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

func (c *OpenAIClient) providerError(ctx context.Context, err error, msg string) error {
	return model.NewProviderError(openaiProvider, isTransientOpenAIError(ctx, err), goerr.Wrap(err, msg))
}

// isTransientOpenAIError treats rate limiting, server errors and transport failures as retryable
func isTransientOpenAIError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	// no HTTP response at all
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}
