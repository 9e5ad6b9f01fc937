package types

// PipelineStep names a stage of document ingestion
type PipelineStep string

const (
	PipelineStepExtract PipelineStep = "extract"
	PipelineStepChunk   PipelineStep = "chunk"
	PipelineStepPersist PipelineStep = "persist"
	PipelineStepEmbed   PipelineStep = "embed"
	PipelineStepCleanup PipelineStep = "cleanup"
)

func (s PipelineStep) String() string {
	return string(s)
}
