package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentID is a UUID-based identifier for Document
type DocumentID string

// NewDocumentID generates a new UUID v4 DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

func (id DocumentID) String() string {
	return string(id)
}

// VectorGroupID links every chunk vector of one document
type VectorGroupID string

// NewVectorGroupID generates a new UUID v4 VectorGroupID
func NewVectorGroupID() VectorGroupID {
	return VectorGroupID(uuid.New().String())
}

// ChunkVectorID returns the vector record ID of the index-th chunk in group
func ChunkVectorID(group VectorGroupID, index int) string {
	return fmt.Sprintf("%s_chunk_%d", group, index)
}

// Document is the durable record of an ingested file
type Document struct {
	ID            DocumentID
	AgentID       AgentID
	Title         string
	FileName      string
	Content       string
	VectorGroupID VectorGroupID
	ChunkCount    int
	CreatedAt     time.Time

	// Ready is set once every chunk vector is stored. A document left by a
	// failed run stays not ready.
	Ready bool
}
