package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func runAgentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Agent().Create(ctx, &model.Agent{
			OwnerID:     uniqueID("teacher"),
			Name:        "Ada",
			Subject:     "Physics",
			Description: "Explains mechanics with everyday examples.",
		})
		gt.NoError(t, err).Required()

		if created.ID == "" {
			t.Error("expected non-empty ID")
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set")
		}

		got, err := repo.Agent().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Ada")
		gt.Value(t, got.Subject).Equal("Physics")
		gt.Value(t, got.OwnerID).Equal(created.OwnerID)
	})

	t.Run("Get returns ErrNotFound for unknown agent", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Agent().Get(context.Background(), model.AgentID(uniqueID("missing")))
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListByOwner returns only owned agents", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := uniqueID("owner")

		for _, name := range []string{"first", "second"} {
			_, err := repo.Agent().Create(ctx, &model.Agent{OwnerID: owner, Name: name, Subject: "Math"})
			gt.NoError(t, err).Required()
		}
		_, err := repo.Agent().Create(ctx, &model.Agent{OwnerID: uniqueID("other"), Name: "other", Subject: "Math"})
		gt.NoError(t, err).Required()

		agents, err := repo.Agent().ListByOwner(ctx, owner)
		gt.NoError(t, err).Required()
		gt.Array(t, agents).Length(2)
		for _, a := range agents {
			gt.Value(t, a.OwnerID).Equal(owner)
		}
	})

	t.Run("Update keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Agent().Create(ctx, &model.Agent{OwnerID: uniqueID("owner"), Name: "before", Subject: "History"})
		gt.NoError(t, err).Required()

		created.Name = "after"
		updated, err := repo.Agent().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("after")
		// Firestore keeps microsecond precision
		gt.Bool(t, updated.CreatedAt.Sub(created.CreatedAt).Abs() < time.Millisecond).True()

		got, err := repo.Agent().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("after")
	})

	t.Run("Update unknown agent returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Agent().Update(context.Background(), &model.Agent{ID: model.AgentID(uniqueID("missing"))})
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes agent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Agent().Create(ctx, &model.Agent{OwnerID: uniqueID("owner"), Name: "gone", Subject: "Art"})
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Agent().Delete(ctx, created.ID)).Required()

		_, err = repo.Agent().Get(ctx, created.ID)
		gt.Error(t, err).Is(model.ErrNotFound)

		err = repo.Agent().Delete(ctx, created.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestMemoryAgentRepository(t *testing.T) {
	runAgentRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreAgentRepository(t *testing.T) {
	runAgentRepositoryTest(t, newFirestoreRepository)
}
