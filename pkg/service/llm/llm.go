// Package llm adapts language model providers to the Embedder and Generator capabilities.
package llm

import (
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultGeminiDimension matches text-embedding-004
	DefaultGeminiDimension = 768
	// DefaultOpenAIDimension matches text-embedding-3-large
	DefaultOpenAIDimension = 3072

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// ErrEmptyText is returned when asked to embed blank text
var ErrEmptyText = goerr.New("text to embed is empty")

// splitSystem separates system instructions from the conversation turns
func splitSystem(messages []model.PromptMessage) (string, []model.PromptMessage) {
	var system []string
	turns := make([]model.PromptMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == types.MessageRoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}

// transcript flattens turns for providers that take a single text input.
// The final user turn is left unlabelled so the model answers it.
func transcript(turns []model.PromptMessage) string {
	if len(turns) == 0 {
		return ""
	}
	if len(turns) == 1 {
		return turns[0].Content
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, m := range turns[:len(turns)-1] {
		label := "Student"
		if m.Role == types.MessageRoleAssistant {
			label = "Assistant"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nStudent question:\n")
	b.WriteString(turns[len(turns)-1].Content)
	return b.String()
}
