package usecase

import (
	"errors"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for use case layer
var (
	// Input errors
	ErrValidation = errors.New("validation failed")

	// Not found errors
	ErrAgentNotFound    = errors.New("agent not found")
	ErrChatNotFound     = errors.New("chat not found")
	ErrDocumentNotFound = errors.New("document not found")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")

	// Provider errors
	ErrGenerationFailed = errors.New("answer generation failed")

	// Configuration errors
	ErrNotConfigured = errors.New("capability is not configured")
)

// Context keys for error values
const (
	AgentIDKey    = "agent_id"
	ChatIDKey     = "chat_id"
	DocumentIDKey = "document_id"
	JobIDKey      = "job_id"
	UserIDKey     = "user_id"
)

func validationError(msg string, options ...goerr.Option) error {
	return goerr.Wrap(ErrValidation, msg, options...)
}

// wrapLookup converts a repository miss into the use case sentinel
func wrapLookup(err, notFound error, msg string, options ...goerr.Option) error {
	if isNotFound(err) {
		return goerr.Wrap(notFound, msg, options...)
	}
	return goerr.Wrap(err, msg, options...)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
