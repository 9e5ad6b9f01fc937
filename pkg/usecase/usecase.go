package usecase

import (
	"context"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/chunker"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/extractor"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/jobs"
	"github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/memory"
)

const (
	DefaultTopK              = 5
	DefaultHistoryLimit      = 15
	DefaultEmbedConcurrency  = 1
	DefaultEmbedMaxRetries   = 2
	DefaultEmbedRetryBackoff = 500 * time.Millisecond
)

// PipelineConfig tunes ingestion and query behaviour
type PipelineConfig struct {
	TopK              int
	HistoryLimit      int
	EmbedConcurrency  int
	EmbedMaxRetries   int
	EmbedRetryBackoff time.Duration
	RollbackOnFailure bool
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TopK:              DefaultTopK,
		HistoryLimit:      DefaultHistoryLimit,
		EmbedConcurrency:  DefaultEmbedConcurrency,
		EmbedMaxRetries:   DefaultEmbedMaxRetries,
		EmbedRetryBackoff: DefaultEmbedRetryBackoff,
	}
}

// normalize replaces unusable values with defaults
func (c PipelineConfig) normalize() PipelineConfig {
	d := DefaultPipelineConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = d.EmbedConcurrency
	}
	if c.EmbedMaxRetries < 0 {
		c.EmbedMaxRetries = 0
	}
	if c.EmbedRetryBackoff < 0 {
		c.EmbedRetryBackoff = 0
	}
	return c
}

type UseCases struct {
	repo      interfaces.Repository
	vectors   interfaces.VectorStore
	embedder  interfaces.Embedder
	generator interfaces.Generator
	storage   interfaces.FileStorage
	extractor interfaces.TextExtractor
	registry  *jobs.Registry
	chunker   *chunker.Chunker
	config    PipelineConfig

	Agent     *AgentUseCase
	Document  *DocumentUseCase
	Chat      *ChatUseCase
	Query     *QueryUseCase
	Ingestion *IngestionUseCase
	Analytics *AnalyticsUseCase
}

type Option func(*UseCases)

func WithVectorStore(store interfaces.VectorStore) Option {
	return func(uc *UseCases) {
		uc.vectors = store
	}
}

func WithEmbedder(embedder interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = embedder
	}
}

func WithGenerator(generator interfaces.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = generator
	}
}

func WithFileStorage(storage interfaces.FileStorage) Option {
	return func(uc *UseCases) {
		uc.storage = storage
	}
}

func WithExtractor(x interfaces.TextExtractor) Option {
	return func(uc *UseCases) {
		uc.extractor = x
	}
}

func WithJobRegistry(registry *jobs.Registry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

func WithChunker(c *chunker.Chunker) Option {
	return func(uc *UseCases) {
		uc.chunker = c
	}
}

func WithPipelineConfig(cfg PipelineConfig) Option {
	return func(uc *UseCases) {
		uc.config = cfg
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		config: DefaultPipelineConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.vectors == nil {
		uc.vectors = memory.New()
	}
	if uc.extractor == nil {
		uc.extractor = extractor.New()
	}
	if uc.registry == nil {
		uc.registry = jobs.NewRegistry()
	}
	if uc.chunker == nil {
		uc.chunker = chunker.Default()
	}
	uc.config = uc.config.normalize()

	retriever := NewRetriever(uc.embedder, uc.vectors, uc.config.TopK)

	uc.Agent = NewAgentUseCase(repo, uc.vectors)
	uc.Document = NewDocumentUseCase(repo, uc.vectors)
	uc.Chat = NewChatUseCase(repo)
	uc.Query = NewQueryUseCase(repo, retriever, uc.generator, uc.config.HistoryLimit)
	uc.Analytics = NewAnalyticsUseCase(repo)
	uc.Ingestion = NewIngestionUseCase(repo, uc.vectors, uc.embedder, uc.storage, uc.extractor, uc.registry, uc.chunker, uc.config)

	return uc
}

// JobRegistry exposes the shared registry so the sweeper can be wired to it
func (uc *UseCases) JobRegistry() *jobs.Registry {
	return uc.registry
}

// Wait blocks until background ingestions finish or ctx is done
func (uc *UseCases) Wait(ctx context.Context) error {
	return uc.Ingestion.Wait(ctx)
}
