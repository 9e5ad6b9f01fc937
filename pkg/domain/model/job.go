package model

import (
	"path"
	"strings"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
)

// JobID identifies an ingestion job. It is derived from the stored upload key.
type JobID string

func (id JobID) String() string {
	return string(id)
}

// JobIDFromFileKey strips directories and the extension from an upload key
func JobIDFromFileKey(key string) JobID {
	base := path.Base(key)
	return JobID(strings.TrimSuffix(base, path.Ext(base)))
}

// IngestionJob tracks one asynchronous ingestion. It lives only in memory.
type IngestionJob struct {
	ID         JobID
	AgentID    AgentID
	Title      string
	FileKey    string
	FileName   string
	Status     types.JobStatus
	Progress   int
	Error      string
	DocumentID DocumentID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// ExpiresAt is zero while processing and set once the job reaches a terminal state
	ExpiresAt time.Time
}

// Copy returns a shallow copy, which is a full copy since the struct has no references
func (j *IngestionJob) Copy() *IngestionJob {
	copied := *j
	return &copied
}

// JobStatusView is the answer to a status read. DocumentID is set only when completed.
type JobStatusView struct {
	ID         string
	Status     types.JobStatus
	Progress   int
	Error      string
	DocumentID DocumentID
}
