package model

import (
	"time"

	"github.com/google/uuid"
)

// AgentID is a UUID-based identifier for Agent
type AgentID string

// NewAgentID generates a new UUID v4 AgentID
func NewAgentID() AgentID {
	return AgentID(uuid.New().String())
}

func (id AgentID) String() string {
	return string(id)
}

// Agent is a subject-matter persona owned by a teacher. Documents and chats
// are partitioned by agent, and retrieval never crosses agent boundaries.
type Agent struct {
	ID          AgentID
	OwnerID     string
	Name        string
	Subject     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
