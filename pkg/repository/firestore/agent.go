package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type agentDoc struct {
	ID          string    `firestore:"ID"`
	OwnerID     string    `firestore:"OwnerID"`
	Name        string    `firestore:"Name"`
	Subject     string    `firestore:"Subject"`
	Description string    `firestore:"Description"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
	UpdatedAt   time.Time `firestore:"UpdatedAt"`
}

func toAgentDoc(a *model.Agent) *agentDoc {
	return &agentDoc{
		ID:          string(a.ID),
		OwnerID:     a.OwnerID,
		Name:        a.Name,
		Subject:     a.Subject,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func docToAgent(doc *firestore.DocumentSnapshot) (*model.Agent, error) {
	var d agentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Agent{
		ID:          model.AgentID(d.ID),
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Subject:     d.Subject,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type agentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAgentRepository(client *firestore.Client) *agentRepository {
	return &agentRepository{client: client}
}

func (r *agentRepository) agents() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, agentsCollection))
}

func (r *agentRepository) Create(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	now := time.Now().UTC()
	created := *agent
	if created.ID == "" {
		created.ID = model.NewAgentID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.agents().Doc(string(created.ID)).Set(ctx, toAgentDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create agent", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *agentRepository) Get(ctx context.Context, id model.AgentID) (*model.Agent, error) {
	doc, err := r.agents().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get agent", goerr.V("id", id))
	}

	agent, err := docToAgent(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal agent", goerr.V("id", id))
	}
	return agent, nil
}

func (r *agentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Agent, error) {
	iter := r.agents().
		Where("OwnerID", "==", ownerID).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	agents := make([]*model.Agent, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate agents", goerr.V("ownerID", ownerID))
		}

		agent, err := docToAgent(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal agent", goerr.V("docID", doc.Ref.ID))
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

func (r *agentRepository) Update(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	ref := r.agents().Doc(string(agent.ID))
	updated := *agent

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("id", agent.ID))
			}
			return goerr.Wrap(err, "failed to get agent", goerr.V("id", agent.ID))
		}
		existing, err := docToAgent(snap)
		if err != nil {
			return goerr.Wrap(err, "failed to unmarshal agent", goerr.V("id", agent.ID))
		}

		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, toAgentDoc(&updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update agent", goerr.V("id", agent.ID))
	}
	return &updated, nil
}

func (r *agentRepository) Delete(ctx context.Context, id model.AgentID) error {
	ref := r.agents().Doc(string(id))
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get agent", goerr.V("id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete agent", goerr.V("id", id))
	}
	return nil
}
