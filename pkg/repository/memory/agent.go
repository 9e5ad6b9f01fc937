package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type agentRepository struct {
	mu     sync.RWMutex
	agents map[model.AgentID]*model.Agent
}

func newAgentRepository() *agentRepository {
	return &agentRepository{
		agents: make(map[model.AgentID]*model.Agent),
	}
}

func copyAgent(a *model.Agent) *model.Agent {
	copied := *a
	return &copied
}

func (r *agentRepository) Create(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyAgent(agent)
	if created.ID == "" {
		created.ID = model.NewAgentID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.agents[created.ID] = created
	return copyAgent(created), nil
}

func (r *agentRepository) Get(ctx context.Context, id model.AgentID) (*model.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("id", id))
	}
	return copyAgent(agent), nil
}

func (r *agentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Agent, 0)
	for _, a := range r.agents {
		if a.OwnerID == ownerID {
			result = append(result, copyAgent(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.agents[agent.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("id", agent.ID))
	}

	updated := copyAgent(agent)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.agents[updated.ID] = updated
	return copyAgent(updated), nil
}

func (r *agentRepository) Delete(ctx context.Context, id model.AgentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("id", id))
	}
	delete(r.agents, id)
	return nil
}
