package config

import (
	"os"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/service/chunker"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/jobs"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// DefaultSweepInterval is how often expired ingestion jobs are removed
const DefaultSweepInterval = time.Minute

// Duration decodes TOML strings such as "500ms" or "5m"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid duration", goerr.V("value", string(text)))
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ChunkConfig controls how extracted text is split
type ChunkConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// EmbedConfig controls chunk embedding during ingestion
type EmbedConfig struct {
	Concurrency  int      `toml:"concurrency"`
	MaxRetries   int      `toml:"max_retries"`
	RetryBackoff Duration `toml:"retry_backoff"`
	// RateLimit is requests per second. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// IngestionConfig controls job bookkeeping
type IngestionConfig struct {
	RollbackOnFailure  bool     `toml:"rollback_on_failure"`
	CompletedRetention Duration `toml:"completed_retention"`
	FailedRetention    Duration `toml:"failed_retention"`
	SweepInterval      Duration `toml:"sweep_interval"`
}

// QueryConfig controls retrieval and prompt assembly
type QueryConfig struct {
	TopK         int `toml:"top_k"`
	HistoryLimit int `toml:"history_limit"`
}

// PipelineConfig is the optional TOML tuning file
type PipelineConfig struct {
	Chunk     ChunkConfig     `toml:"chunk"`
	Embed     EmbedConfig     `toml:"embed"`
	Ingestion IngestionConfig `toml:"ingestion"`
	Query     QueryConfig     `toml:"query"`
}

// DefaultPipelineConfig returns the values used when no file is given
func DefaultPipelineConfig() *PipelineConfig {
	uc := usecase.DefaultPipelineConfig()
	return &PipelineConfig{
		Chunk: ChunkConfig{
			Size:    chunker.DefaultSize,
			Overlap: chunker.DefaultOverlap,
		},
		Embed: EmbedConfig{
			Concurrency:  uc.EmbedConcurrency,
			MaxRetries:   uc.EmbedMaxRetries,
			RetryBackoff: Duration{uc.EmbedRetryBackoff},
			Burst:        1,
		},
		Ingestion: IngestionConfig{
			RollbackOnFailure:  uc.RollbackOnFailure,
			CompletedRetention: Duration{jobs.DefaultCompletedRetention},
			FailedRetention:    Duration{jobs.DefaultFailedRetention},
			SweepInterval:      Duration{DefaultSweepInterval},
		},
		Query: QueryConfig{
			TopK:         uc.TopK,
			HistoryLimit: uc.HistoryLimit,
		},
	}
}

// Validate checks value ranges
func (p *PipelineConfig) Validate() error {
	if _, err := chunker.New(p.Chunk.Size, p.Chunk.Overlap); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid chunk settings",
			goerr.V("size", p.Chunk.Size),
			goerr.V("overlap", p.Chunk.Overlap),
			goerr.V("cause", err.Error()))
	}
	if p.Embed.Concurrency < 1 {
		return goerr.Wrap(ErrInvalidConfig, "embed concurrency must be at least 1", goerr.V("concurrency", p.Embed.Concurrency))
	}
	if p.Embed.MaxRetries < 0 {
		return goerr.Wrap(ErrInvalidConfig, "embed max_retries must not be negative", goerr.V("max_retries", p.Embed.MaxRetries))
	}
	if p.Embed.RateLimit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "embed rate_limit must not be negative", goerr.V("rate_limit", p.Embed.RateLimit))
	}
	if p.Ingestion.CompletedRetention.Duration <= 0 || p.Ingestion.FailedRetention.Duration <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "job retention must be positive")
	}
	if p.Ingestion.SweepInterval.Duration <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "sweep_interval must be positive")
	}
	if p.Query.TopK < 1 || p.Query.HistoryLimit < 1 {
		return goerr.Wrap(ErrInvalidConfig, "top_k and history_limit must be at least 1",
			goerr.V("top_k", p.Query.TopK),
			goerr.V("history_limit", p.Query.HistoryLimit))
	}
	return nil
}

// Chunker builds the configured chunker
func (p *PipelineConfig) Chunker() (*chunker.Chunker, error) {
	return chunker.New(p.Chunk.Size, p.Chunk.Overlap)
}

// UseCase converts the file into use case settings
func (p *PipelineConfig) UseCase() usecase.PipelineConfig {
	return usecase.PipelineConfig{
		TopK:              p.Query.TopK,
		HistoryLimit:      p.Query.HistoryLimit,
		EmbedConcurrency:  p.Embed.Concurrency,
		EmbedMaxRetries:   p.Embed.MaxRetries,
		EmbedRetryBackoff: p.Embed.RetryBackoff.Duration,
		RollbackOnFailure: p.Ingestion.RollbackOnFailure,
	}
}

// JobRegistry builds a registry with the configured retention
func (p *PipelineConfig) JobRegistry() *jobs.Registry {
	return jobs.NewRegistry(jobs.WithRetention(
		p.Ingestion.CompletedRetention.Duration,
		p.Ingestion.FailedRetention.Duration,
	))
}

// LoadPipelineConfig reads path on top of the defaults
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return cfg, nil
}

// Pipeline holds the CLI flag pointing at the tuning file
type Pipeline struct {
	path string
}

func (p *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Pipeline tuning TOML file",
			Sources:     cli.EnvVars("TEACHER_RAG_CONFIG"),
			Destination: &p.path,
		},
	}
}

// Configure loads the file, or returns defaults when no path is set
func (p *Pipeline) Configure() (*PipelineConfig, error) {
	if p.path == "" {
		return DefaultPipelineConfig(), nil
	}
	return LoadPipelineConfig(p.path)
}
