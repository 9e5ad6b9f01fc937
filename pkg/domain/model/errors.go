package model

import (
	"errors"
	"fmt"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned by repositories when the requested entity does not exist
var ErrNotFound = goerr.New("not found")

// ProviderError is a failure reported by an embedding, generation or vector store backend.
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a provider failure
func NewProviderError(provider string, transient bool, err error) *ProviderError {
	return &ProviderError{Provider: provider, Transient: transient, Err: err}
}

// IsTransient reports whether err carries a transient provider failure
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// PipelineError is an ingestion failure annotated with the step that failed
type PipelineError struct {
	Step types.PipelineStep
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
