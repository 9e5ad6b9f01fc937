package cli

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/cli/config"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// backendConfig groups the flags shared by commands that run the pipelines
type backendConfig struct {
	repository  config.Repository
	vectorStore config.VectorStore
	llm         config.LLM
	storage     config.Storage
	pipeline    config.Pipeline
}

func (b *backendConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, b.pipeline.Flags()...)
	flags = append(flags, b.repository.Flags()...)
	flags = append(flags, b.vectorStore.Flags()...)
	flags = append(flags, b.llm.Flags()...)
	flags = append(flags, b.storage.Flags()...)
	return flags
}

// runtime is a fully wired set of use cases and the resources behind them
type runtime struct {
	uc       *usecase.UseCases
	repo     interfaces.Repository
	pipeline *config.PipelineConfig
	closers  []func()
}

// Close releases resources in reverse order of acquisition
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func (b *backendConfig) open(ctx context.Context) (_ *runtime, err error) {
	rt := &runtime{}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	pipeline, err := b.pipeline.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load pipeline configuration")
	}
	rt.pipeline = pipeline

	chunker, err := pipeline.Chunker()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chunker")
	}

	repo, err := b.repository.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	rt.repo = repo
	rt.closers = append(rt.closers, func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	})

	vectors, closeVectors, err := b.vectorStore.Configure(ctx, &b.repository)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize vector store")
	}
	rt.closers = append(rt.closers, closeVectors)

	provider, err := b.llm.Configure(ctx, pipeline)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize LLM provider")
	}

	files, closeFiles, err := b.storage.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize upload storage")
	}
	rt.closers = append(rt.closers, closeFiles)

	logging.Default().Info("Pipeline configured",
		"llm", b.llm,
		"chunk_size", chunker.Size(),
		"chunk_overlap", chunker.Overlap(),
		"embed_concurrency", pipeline.Embed.Concurrency,
		"top_k", pipeline.Query.TopK)

	rt.uc = usecase.New(repo,
		usecase.WithVectorStore(vectors),
		usecase.WithEmbedder(provider.Embedder),
		usecase.WithGenerator(provider.Generator),
		usecase.WithFileStorage(files),
		usecase.WithChunker(chunker),
		usecase.WithJobRegistry(pipeline.JobRegistry()),
		usecase.WithPipelineConfig(pipeline.UseCase()),
	)
	return rt, nil
}
