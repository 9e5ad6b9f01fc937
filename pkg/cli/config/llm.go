package config

import (
	"context"
	"log/slog"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// LLM selects the embedding and generation provider
type LLM struct {
	provider  string
	dimension int

	openAIKey            string
	openAIBaseURL        string
	openAIChatModel      string
	openAIEmbeddingModel string

	gemini Gemini
}

// Flags returns CLI flags for provider configuration
func (l *LLM) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Embedding and generation provider (gemini or openai)",
			Value:       "gemini",
			Category:    "LLM",
			Sources:     cli.EnvVars("TEACHER_RAG_LLM_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector dimension (provider default when 0)",
			Category:    "LLM",
			Sources:     cli.EnvVars("TEACHER_RAG_EMBEDDING_DIMENSION"),
			Destination: &l.dimension,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "LLM",
			Sources:     cli.EnvVars("TEACHER_RAG_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &l.openAIKey,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Usage:       "OpenAI compatible API base URL",
			Category:    "LLM",
			Sources:     cli.EnvVars("TEACHER_RAG_OPENAI_BASE_URL"),
			Destination: &l.openAIBaseURL,
		},
		&cli.StringFlag{
			Name:        "openai-chat-model",
			Usage:       "OpenAI chat model",
			Category:    "LLM",
			Sources:     cli.EnvVars("TEACHER_RAG_OPENAI_CHAT_MODEL"),
			Destination: &l.openAIChatModel,
		},
		&cli.StringFlag{
			Name:        "openai-embedding-model",
			Usage:       "OpenAI embedding model",
			Category:    "LLM",
			Sources:     cli.EnvVars("TEACHER_RAG_OPENAI_EMBEDDING_MODEL"),
			Destination: &l.openAIEmbeddingModel,
		},
	}
	return append(flags, l.gemini.Flags()...)
}

func (l LLM) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("provider", l.provider),
		slog.Int("dimension", l.dimension),
	}
	switch l.provider {
	case "openai":
		attrs = append(attrs,
			slog.String("chat_model", l.openAIChatModel),
			slog.String("embedding_model", l.openAIEmbeddingModel),
			slog.Bool("api_key_set", l.openAIKey != ""),
		)
	case "gemini":
		attrs = append(attrs, l.gemini.LogAttrs()...)
	}
	return slog.GroupValue(attrs...)
}

// Dimension returns the configured dimension or the provider default
func (l *LLM) Dimension() int {
	if l.dimension > 0 {
		return l.dimension
	}
	if l.provider == "openai" {
		return llm.DefaultOpenAIDimension
	}
	return llm.DefaultGeminiDimension
}

// Provider is the pair of capabilities built from one backend
type Provider struct {
	Embedder  interfaces.Embedder
	Generator interfaces.Generator
}

// Configure builds the embedder and generator. pipeline applies the embedding rate limit.
func (l *LLM) Configure(ctx context.Context, pipeline *PipelineConfig) (*Provider, error) {
	var p Provider

	switch l.provider {
	case "gemini":
		client, err := l.gemini.Configure(ctx)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, goerr.Wrap(ErrMissingRequired, "gemini-project is required for the gemini provider",
				goerr.V(FlagKey, "gemini-project"))
		}
		gc, err := llm.NewGollem(client, llm.WithGollemDimension(l.Dimension()))
		if err != nil {
			return nil, err
		}
		p.Embedder, p.Generator = gc, gc

	case "openai":
		if l.openAIKey == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "openai-api-key is required for the openai provider",
				goerr.V(FlagKey, "openai-api-key"))
		}
		opts := []llm.OpenAIOption{}
		if l.dimension > 0 {
			opts = append(opts, llm.WithOpenAIDimension(l.dimension))
		}
		if l.openAIBaseURL != "" {
			opts = append(opts, llm.WithOpenAIBaseURL(l.openAIBaseURL))
		}
		if l.openAIChatModel != "" {
			opts = append(opts, llm.WithOpenAIChatModel(l.openAIChatModel))
		}
		if l.openAIEmbeddingModel != "" {
			opts = append(opts, llm.WithOpenAIEmbeddingModel(l.openAIEmbeddingModel))
		}
		oc, err := llm.NewOpenAI(l.openAIKey, opts...)
		if err != nil {
			return nil, err
		}
		p.Embedder, p.Generator = oc, oc

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid llm provider", goerr.V(BackendKey, l.provider))
	}

	if pipeline != nil {
		p.Embedder = llm.NewRateLimitedEmbedder(p.Embedder, pipeline.Embed.RateLimit, pipeline.Embed.Burst)
	}
	return &p, nil
}
