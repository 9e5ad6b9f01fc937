package usecase

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DocumentUseCase manages ingested documents of an agent
type DocumentUseCase struct {
	repo    interfaces.Repository
	vectors interfaces.VectorStore
}

func NewDocumentUseCase(repo interfaces.Repository, vectors interfaces.VectorStore) *DocumentUseCase {
	return &DocumentUseCase{
		repo:    repo,
		vectors: vectors,
	}
}

// List returns the documents of an agent owned by callerID, newest first
func (uc *DocumentUseCase) List(ctx context.Context, callerID string, agentID model.AgentID) ([]*model.Document, error) {
	if _, err := ownedAgent(ctx, uc.repo, callerID, agentID); err != nil {
		return nil, err
	}

	docs, err := uc.repo.Document().ListByAgent(ctx, agentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V(AgentIDKey, agentID))
	}
	return docs, nil
}

func (uc *DocumentUseCase) Get(ctx context.Context, callerID string, id model.DocumentID) (*model.Document, error) {
	if id == "" {
		return nil, validationError("document ID is required")
	}

	doc, err := uc.repo.Document().Get(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, ErrDocumentNotFound, "failed to get document", goerr.V(DocumentIDKey, id))
	}
	if _, err := ownedAgent(ctx, uc.repo, callerID, doc.AgentID); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document and every chunk vector that belongs to it
func (uc *DocumentUseCase) Delete(ctx context.Context, callerID string, id model.DocumentID) error {
	doc, err := uc.Get(ctx, callerID, id)
	if err != nil {
		return err
	}

	if err := uc.vectors.DeleteByFilter(ctx, model.VectorFilter{DocumentID: doc.ID}); err != nil {
		return goerr.Wrap(err, "failed to delete document vectors", goerr.V(DocumentIDKey, id))
	}
	if err := uc.repo.Document().Delete(ctx, doc.ID); err != nil {
		return wrapLookup(err, ErrDocumentNotFound, "failed to delete document", goerr.V(DocumentIDKey, id))
	}

	logging.From(ctx).Info("document deleted",
		"document_id", doc.ID,
		"agent_id", doc.AgentID,
		"chunks", doc.ChunkCount)
	return nil
}

// ownedAgent loads an agent and checks that callerID owns it
func ownedAgent(ctx context.Context, repo interfaces.Repository, callerID string, agentID model.AgentID) (*model.Agent, error) {
	if callerID == "" {
		return nil, validationError("caller ID is required")
	}
	if agentID == "" {
		return nil, validationError("agent ID is required")
	}

	agent, err := repo.Agent().Get(ctx, agentID)
	if err != nil {
		return nil, wrapLookup(err, ErrAgentNotFound, "failed to get agent", goerr.V(AgentIDKey, agentID))
	}
	if agent.OwnerID != callerID {
		return nil, goerr.Wrap(ErrAccessDenied, "agent belongs to another user",
			goerr.V(AgentIDKey, agentID),
			goerr.V(UserIDKey, callerID))
	}
	return agent, nil
}
