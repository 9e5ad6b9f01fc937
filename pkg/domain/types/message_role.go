package types

import "fmt"

// MessageRole is the author of a conversation turn
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// IsValid checks if the role is valid
func (r MessageRole) IsValid() bool {
	switch r {
	case MessageRoleSystem, MessageRoleUser, MessageRoleAssistant:
		return true
	default:
		return false
	}
}

// IsChatRole reports whether r may be stored as a chat turn. System
// instructions are assembled per request and never persisted.
func (r MessageRole) IsChatRole() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

func (r MessageRole) String() string {
	return string(r)
}

// ParseMessageRole parses a string into a MessageRole
func ParseMessageRole(s string) (MessageRole, error) {
	role := MessageRole(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid message role: %s", s)
	}
	return role, nil
}
