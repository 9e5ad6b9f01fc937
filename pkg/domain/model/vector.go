package model

// VectorMetadata is stored alongside every chunk vector
type VectorMetadata struct {
	DocumentID DocumentID
	AgentID    AgentID
	Content    string
	Title      string
	ChunkIndex int
}

// VectorRecord is one embedded chunk
type VectorRecord struct {
	ID       string
	Vector   []float32
	Metadata VectorMetadata
}

// VectorMatch is a query hit. Higher Score means more similar.
type VectorMatch struct {
	ID       string
	Score    float32
	Metadata VectorMetadata
}

// VectorFilter is an equality predicate over metadata. Empty fields are unconstrained.
type VectorFilter struct {
	AgentID    AgentID
	DocumentID DocumentID
}

// IsEmpty reports whether the filter matches every record
func (f VectorFilter) IsEmpty() bool {
	return f.AgentID == "" && f.DocumentID == ""
}

// Match reports whether m satisfies every constrained field of f
func (f VectorFilter) Match(m VectorMetadata) bool {
	if f.AgentID != "" && m.AgentID != f.AgentID {
		return false
	}
	if f.DocumentID != "" && m.DocumentID != f.DocumentID {
		return false
	}
	return true
}
