package llm

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

// RateLimitedEmbedder throttles calls to an underlying Embedder
type RateLimitedEmbedder struct {
	embedder interfaces.Embedder
	limiter  *rate.Limiter
}

var _ interfaces.Embedder = &RateLimitedEmbedder{}

// NewRateLimitedEmbedder allows perSecond calls per second with the given burst.
// A non-positive rate disables throttling and returns the embedder unchanged.
func NewRateLimitedEmbedder(embedder interfaces.Embedder, perSecond float64, burst int) interfaces.Embedder {
	if perSecond <= 0 {
		return embedder
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, goerr.Wrap(err, "embedding rate limiter wait failed")
	}
	return e.embedder.Embed(ctx, text)
}

func (e *RateLimitedEmbedder) Dimension() int {
	return e.embedder.Dimension()
}
