package memory

import (
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps every entity in process memory. Intended for development and tests.
type Memory struct {
	agent    *agentRepository
	document *documentRepository
	chat     *chatRepository
	message  *messageRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		agent:    newAgentRepository(),
		document: newDocumentRepository(),
		chat:     newChatRepository(),
		message:  newMessageRepository(),
	}
}

func (m *Memory) Agent() interfaces.AgentRepository {
	return m.agent
}

func (m *Memory) Document() interfaces.DocumentRepository {
	return m.document
}

func (m *Memory) Chat() interfaces.ChatRepository {
	return m.chat
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) Close() error {
	return nil
}
