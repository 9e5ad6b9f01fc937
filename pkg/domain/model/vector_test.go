package model_test

import (
	"errors"
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestChunkVectorID(t *testing.T) {
	gt.Value(t, model.ChunkVectorID("group-1", 0)).Equal("group-1_chunk_0")
	gt.Value(t, model.ChunkVectorID("group-1", 12)).Equal("group-1_chunk_12")
}

func TestJobIDFromFileKey(t *testing.T) {
	gt.Value(t, model.JobIDFromFileKey("uploads/3f1c.pdf")).Equal(model.JobID("3f1c"))
	gt.Value(t, model.JobIDFromFileKey("3f1c")).Equal(model.JobID("3f1c"))
	gt.Value(t, model.JobIDFromFileKey("a/b/notes.tar.gz")).Equal(model.JobID("notes.tar"))
}

func TestVectorFilter_Match(t *testing.T) {
	meta := model.VectorMetadata{AgentID: "agent-a", DocumentID: "doc-1"}

	gt.Bool(t, model.VectorFilter{}.Match(meta)).True()
	gt.Bool(t, model.VectorFilter{}.IsEmpty()).True()
	gt.Bool(t, model.VectorFilter{AgentID: "agent-a"}.Match(meta)).True()
	gt.Bool(t, model.VectorFilter{AgentID: "agent-b"}.Match(meta)).False()
	gt.Bool(t, model.VectorFilter{AgentID: "agent-a", DocumentID: "doc-2"}.Match(meta)).False()
	gt.Bool(t, model.VectorFilter{DocumentID: "doc-1"}.Match(meta)).True()
}

func TestProviderError(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := goerr.Wrap(model.NewProviderError("openai", true, cause), "failed to embed chunk")

	gt.Bool(t, model.IsTransient(err)).True()
	gt.Error(t, err).Is(cause)
	gt.Bool(t, model.IsTransient(model.NewProviderError("openai", false, cause))).False()
	gt.Bool(t, model.IsTransient(cause)).False()
}

func TestPipelineError(t *testing.T) {
	cause := errors.New("broken pdf")
	err := &model.PipelineError{Step: types.PipelineStepExtract, Err: cause}

	gt.Value(t, err.Error()).Equal("extract step failed: broken pdf")
	gt.Error(t, err).Is(cause)
}
