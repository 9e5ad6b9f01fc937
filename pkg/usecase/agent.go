package usecase

import (
	"context"
	"strings"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// AgentInput holds the editable persona fields
type AgentInput struct {
	Name        string
	Subject     string
	Description string
}

func (in AgentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("agent name is required")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return validationError("agent subject is required")
	}
	return nil
}

// AgentUseCase manages teacher-owned personas
type AgentUseCase struct {
	repo    interfaces.Repository
	vectors interfaces.VectorStore
}

func NewAgentUseCase(repo interfaces.Repository, vectors interfaces.VectorStore) *AgentUseCase {
	return &AgentUseCase{
		repo:    repo,
		vectors: vectors,
	}
}

func (uc *AgentUseCase) Create(ctx context.Context, ownerID string, in AgentInput) (*model.Agent, error) {
	if ownerID == "" {
		return nil, validationError("owner ID is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	created, err := uc.repo.Agent().Create(ctx, &model.Agent{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Subject:     strings.TrimSpace(in.Subject),
		Description: strings.TrimSpace(in.Description),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create agent", goerr.V(UserIDKey, ownerID))
	}
	return created, nil
}

// Get returns any agent. Students need to read personas they do not own.
func (uc *AgentUseCase) Get(ctx context.Context, id model.AgentID) (*model.Agent, error) {
	if id == "" {
		return nil, validationError("agent ID is required")
	}
	agent, err := uc.repo.Agent().Get(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, ErrAgentNotFound, "failed to get agent", goerr.V(AgentIDKey, id))
	}
	return agent, nil
}

// List returns the agents owned by ownerID
func (uc *AgentUseCase) List(ctx context.Context, ownerID string) ([]*model.Agent, error) {
	if ownerID == "" {
		return nil, validationError("owner ID is required")
	}
	agents, err := uc.repo.Agent().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agents", goerr.V(UserIDKey, ownerID))
	}
	return agents, nil
}

func (uc *AgentUseCase) Update(ctx context.Context, callerID string, id model.AgentID, in AgentInput) (*model.Agent, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	agent, err := uc.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	agent.Name = strings.TrimSpace(in.Name)
	agent.Subject = strings.TrimSpace(in.Subject)
	agent.Description = strings.TrimSpace(in.Description)

	updated, err := uc.repo.Agent().Update(ctx, agent)
	if err != nil {
		return nil, wrapLookup(err, ErrAgentNotFound, "failed to update agent", goerr.V(AgentIDKey, id))
	}
	return updated, nil
}

// Delete removes the agent together with its documents and their vectors
func (uc *AgentUseCase) Delete(ctx context.Context, callerID string, id model.AgentID) error {
	if _, err := uc.owned(ctx, callerID, id); err != nil {
		return err
	}

	docs, err := uc.repo.Document().ListByAgent(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list agent documents", goerr.V(AgentIDKey, id))
	}

	if err := uc.vectors.DeleteByFilter(ctx, model.VectorFilter{AgentID: id}); err != nil {
		return goerr.Wrap(err, "failed to delete agent vectors", goerr.V(AgentIDKey, id))
	}

	for _, doc := range docs {
		if err := uc.repo.Document().Delete(ctx, doc.ID); err != nil && !isNotFound(err) {
			return goerr.Wrap(err, "failed to delete agent document",
				goerr.V(AgentIDKey, id),
				goerr.V(DocumentIDKey, doc.ID))
		}
	}

	if err := uc.repo.Agent().Delete(ctx, id); err != nil {
		return wrapLookup(err, ErrAgentNotFound, "failed to delete agent", goerr.V(AgentIDKey, id))
	}

	logging.From(ctx).Info("agent deleted",
		"agent_id", id,
		"documents", len(docs))
	return nil
}

func (uc *AgentUseCase) owned(ctx context.Context, callerID string, id model.AgentID) (*model.Agent, error) {
	return ownedAgent(ctx, uc.repo, callerID, id)
}
