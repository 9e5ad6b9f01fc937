package interfaces

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
)

// Embedder converts text to a fixed-dimension vector.
// Failures are reported as *model.ProviderError.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Generator produces the assistant reply for an ordered message sequence
type Generator interface {
	Generate(ctx context.Context, messages []model.PromptMessage) (string, error)
}
