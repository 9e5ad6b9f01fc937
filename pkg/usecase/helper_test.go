package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/repository/memory"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/storage"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	vsmemory "github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/memory"
	"github.com/m-mizutani/gt"
)

const letterDim = 26

// letterVector embeds text as its letter frequency so similar texts score higher
func letterVector(text string) []float32 {
	v := make([]float32, letterDim)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// mockEmbedder counts calls and delegates to embedFn when set
type mockEmbedder struct {
	calls   atomic.Int32
	embedFn func(ctx context.Context, call int, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	call := int(m.calls.Add(1))
	if m.embedFn != nil {
		return m.embedFn(ctx, call, text)
	}
	return letterVector(text), nil
}

func (m *mockEmbedder) Dimension() int {
	return letterDim
}

// mockGenerator records the prompts it receives
type mockGenerator struct {
	mu         sync.Mutex
	calls      [][]model.PromptMessage
	generateFn func(ctx context.Context, messages []model.PromptMessage) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, messages []model.PromptMessage) (string, error) {
	m.mu.Lock()
	copied := make([]model.PromptMessage, len(messages))
	copy(copied, messages)
	m.calls = append(m.calls, copied)
	m.mu.Unlock()

	if m.generateFn != nil {
		return m.generateFn(ctx, messages)
	}
	return "Great question! Here is what the material says.", nil
}

func (m *mockGenerator) lastCall() []model.PromptMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type testEnv struct {
	repo       *memory.Memory
	vectors    *vsmemory.Store
	embedder   *mockEmbedder
	generator  *mockGenerator
	storage    *storage.Local
	storageDir string
	uc         *usecase.UseCases
}

func newTestEnv(t *testing.T, opts ...usecase.Option) *testEnv {
	t.Helper()

	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	gt.NoError(t, err).Required()

	env := &testEnv{
		repo:       memory.New(),
		vectors:    vsmemory.New(),
		embedder:   &mockEmbedder{},
		generator:  &mockGenerator{},
		storage:    local,
		storageDir: dir,
	}

	base := []usecase.Option{
		usecase.WithVectorStore(env.vectors),
		usecase.WithEmbedder(env.embedder),
		usecase.WithGenerator(env.generator),
		usecase.WithFileStorage(env.storage),
	}
	env.uc = usecase.New(env.repo, append(base, opts...)...)
	return env
}

func (e *testEnv) createAgent(t *testing.T, ownerID string) *model.Agent {
	t.Helper()
	agent, err := e.uc.Agent.Create(context.Background(), ownerID, usecase.AgentInput{
		Name:        "Professor Oak",
		Subject:     "Biology",
		Description: "A patient biology teacher.",
	})
	gt.NoError(t, err).Required()
	return agent
}

func (e *testEnv) addVector(t *testing.T, id string, agentID model.AgentID, docID model.DocumentID, content string) {
	t.Helper()
	gt.NoError(t, e.vectors.Upsert(context.Background(), &model.VectorRecord{
		ID:     id,
		Vector: letterVector(content),
		Metadata: model.VectorMetadata{
			DocumentID: docID,
			AgentID:    agentID,
			Content:    content,
			Title:      "Notes",
		},
	})).Required()
}

// vectorIDs returns stored vector IDs of a document
func (e *testEnv) vectorIDs(t *testing.T, docID model.DocumentID) []string {
	t.Helper()
	matches, err := e.vectors.Query(context.Background(), letterVector("abcdefghijklmnopqrstuvwxyz"), 1000, model.VectorFilter{DocumentID: docID})
	gt.NoError(t, err).Required()
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

func (e *testEnv) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gt.NoError(t, e.uc.Wait(ctx)).Required()
}

var errQuota = errors.New("quota exceeded")
