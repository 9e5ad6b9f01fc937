package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	vsmemory "github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/memory"
	"github.com/m-mizutani/gt"
)

// leakyStore ignores filters, like a misconfigured index would
type leakyStore struct {
	*vsmemory.Store
}

func (s *leakyStore) Query(ctx context.Context, vector []float32, topK int, filter model.VectorFilter) ([]*model.VectorMatch, error) {
	return s.Store.Query(ctx, vector, topK, model.VectorFilter{})
}

func TestRetriever_Retrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns only the requested agent in score order", func(t *testing.T) {
		env := newTestEnv(t)
		for i := range 5 {
			env.addVector(t, fmt.Sprintf("a%d", i), "agent-a", "doc-a", fmt.Sprintf("cell membrane lesson %d", i))
		}
		for i := range 3 {
			env.addVector(t, fmt.Sprintf("b%d", i), "agent-b", "doc-b", "cell membrane lesson")
		}

		r := usecase.NewRetriever(env.embedder, env.vectors, 0)
		passages, err := r.Retrieve(ctx, "cell membrane", "agent-a", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, passages).Length(usecase.DefaultTopK).Required()
		for i, p := range passages {
			gt.Value(t, p.DocumentID).Equal(model.DocumentID("doc-a"))
			if i > 0 {
				gt.Bool(t, passages[i-1].Score >= p.Score).True()
			}
		}
	})

	t.Run("honors topK", func(t *testing.T) {
		env := newTestEnv(t)
		for i := range 4 {
			env.addVector(t, fmt.Sprintf("a%d", i), "agent-a", "doc-a", "enzymes")
		}

		passages, err := usecase.NewRetriever(env.embedder, env.vectors, 0).Retrieve(ctx, "enzymes", "agent-a", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, passages).Length(2)
	})

	t.Run("drops matches of other agents returned by the store", func(t *testing.T) {
		env := newTestEnv(t)
		env.addVector(t, "a0", "agent-a", "doc-a", "ribosomes build proteins")
		env.addVector(t, "b0", "agent-b", "doc-b", "ribosomes build proteins")
		env.addVector(t, "b1", "agent-b", "doc-b", "ribosomes build proteins")

		r := usecase.NewRetriever(env.embedder, &leakyStore{Store: env.vectors}, 0)
		passages, err := r.Retrieve(ctx, "ribosomes", "agent-a", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, passages).Length(1).Required()
		gt.Value(t, passages[0].Content).Equal("ribosomes build proteins")
		gt.Value(t, passages[0].DocumentID).Equal(model.DocumentID("doc-a"))
	})

	t.Run("empty store yields no passages", func(t *testing.T) {
		env := newTestEnv(t)
		passages, err := usecase.NewRetriever(env.embedder, env.vectors, 0).Retrieve(ctx, "anything", "agent-a", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, passages).Length(0)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		r := usecase.NewRetriever(env.embedder, env.vectors, 0)

		_, err := r.Retrieve(ctx, "q", "", 0)
		gt.Error(t, err).Is(usecase.ErrValidation)

		_, err = r.Retrieve(ctx, "  ", "agent-a", 0)
		gt.Error(t, err).Is(usecase.ErrValidation)

		gt.Number(t, env.embedder.calls.Load()).Equal(int32(0))
	})

	t.Run("embedding failure is returned", func(t *testing.T) {
		env := newTestEnv(t)
		env.embedder.embedFn = func(ctx context.Context, call int, text string) ([]float32, error) {
			return nil, model.NewProviderError("gollem", true, errQuota)
		}

		_, err := usecase.NewRetriever(env.embedder, env.vectors, 0).Retrieve(ctx, "q", "agent-a", 0)
		gt.Error(t, err).Is(errQuota)
		gt.Bool(t, model.IsTransient(err)).True()
	})
}
