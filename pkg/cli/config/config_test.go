package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/cli/config"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/llm"
	"github.com/m-mizutani/gt"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestLoadPipelineConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
[chunk]
size = 500
overlap = 50

[embed]
concurrency = 4
retry_backoff = "250ms"
rate_limit = 2.5
burst = 3

[ingestion]
rollback_on_failure = true
failed_retention = "30m"

[query]
history_limit = 10
`)
		cfg, err := config.LoadPipelineConfig(path)
		gt.NoError(t, err).Required()

		gt.Number(t, cfg.Chunk.Size).Equal(500)
		gt.Number(t, cfg.Chunk.Overlap).Equal(50)
		gt.Number(t, cfg.Embed.Concurrency).Equal(4)
		gt.Value(t, cfg.Embed.RetryBackoff.Duration).Equal(250 * time.Millisecond)
		gt.Value(t, cfg.Ingestion.FailedRetention.Duration).Equal(30 * time.Minute)
		gt.Value(t, cfg.Ingestion.CompletedRetention.Duration).Equal(5 * time.Minute)
		gt.Bool(t, cfg.Ingestion.RollbackOnFailure).True()

		uc := cfg.UseCase()
		gt.Number(t, uc.TopK).Equal(5)
		gt.Number(t, uc.HistoryLimit).Equal(10)
		gt.Number(t, uc.EmbedConcurrency).Equal(4)

		c, err := cfg.Chunker()
		gt.NoError(t, err).Required()
		gt.Number(t, c.Size()).Equal(500)
	})

	t.Run("rejects overlap not smaller than size", func(t *testing.T) {
		path := writeConfig(t, "[chunk]\nsize = 100\noverlap = 100\n")
		_, err := config.LoadPipelineConfig(path)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		path := writeConfig(t, "[ingestion]\nsweep_interval = \"soon\"\n")
		_, err := config.LoadPipelineConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadPipelineConfig(filepath.Join(t.TempDir(), "none.toml"))
		gt.Value(t, err).NotNil()
	})

	t.Run("defaults are valid", func(t *testing.T) {
		gt.NoError(t, config.DefaultPipelineConfig().Validate())
	})
}

func TestLogger_Configure(t *testing.T) {
	t.Run("writes to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()
		closer()

		_, err = os.Stat(path)
		gt.NoError(t, err)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "console", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestRepository_Configure(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires a project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("mysql", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrUnknownBackend)
	})
}

func TestVectorStore_Configure(t *testing.T) {
	repo := config.NewRepositoryForTest("memory", "")

	for _, backend := range []string{"memory", "chromem"} {
		t.Run(backend, func(t *testing.T) {
			store, closer, err := config.NewVectorStoreForTest(backend, "").Configure(t.Context(), repo)
			gt.NoError(t, err).Required()
			defer closer()
			gt.Value(t, store).NotNil()
		})
	}

	t.Run("pgvector requires a dsn", func(t *testing.T) {
		_, _, err := config.NewVectorStoreForTest("pgvector", "").Configure(t.Context(), repo)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("firestore requires a project", func(t *testing.T) {
		_, _, err := config.NewVectorStoreForTest("firestore", "").Configure(t.Context(), repo)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewVectorStoreForTest("faiss", "").Configure(t.Context(), repo)
		gt.Error(t, err).Is(config.ErrUnknownBackend)
	})
}

func TestStorage_Configure(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		store, closer, err := config.NewStorageForTest("local", dir).Configure(t.Context())
		gt.NoError(t, err).Required()
		defer closer()
		gt.Value(t, store).NotNil()

		info, err := os.Stat(dir)
		gt.NoError(t, err).Required()
		gt.Bool(t, info.IsDir()).True()
	})

	t.Run("gcs requires a bucket", func(t *testing.T) {
		_, _, err := config.NewStorageForTest("gcs", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})
}

func TestLLM_Configure(t *testing.T) {
	t.Run("openai requires a key", func(t *testing.T) {
		_, err := config.NewLLMForTest("openai", "", "", 0).Configure(t.Context(), nil)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("gemini requires a project", func(t *testing.T) {
		_, err := config.NewLLMForTest("gemini", "", "", 0).Configure(t.Context(), nil)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewLLMForTest("claude", "", "", 0).Configure(t.Context(), nil)
		gt.Error(t, err).Is(config.ErrUnknownBackend)
	})

	t.Run("openai applies rate limit", func(t *testing.T) {
		pipeline := config.DefaultPipelineConfig()
		pipeline.Embed.RateLimit = 5

		p, err := config.NewLLMForTest("openai", "sk-test", "http://127.0.0.1:1/v1", 0).Configure(t.Context(), pipeline)
		gt.NoError(t, err).Required()
		_, limited := p.Embedder.(*llm.RateLimitedEmbedder)
		gt.Bool(t, limited).True()
		gt.Number(t, p.Embedder.Dimension()).Equal(llm.DefaultOpenAIDimension)
	})

	t.Run("dimension defaults per provider", func(t *testing.T) {
		gt.Number(t, config.NewLLMForTest("gemini", "", "", 0).Dimension()).Equal(llm.DefaultGeminiDimension)
		gt.Number(t, config.NewLLMForTest("openai", "", "", 0).Dimension()).Equal(llm.DefaultOpenAIDimension)
		gt.Number(t, config.NewLLMForTest("openai", "", "", 256).Dimension()).Equal(256)
	})
}
