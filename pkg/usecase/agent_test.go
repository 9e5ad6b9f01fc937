package usecase_test

import (
	"context"
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestAgentUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("create trims input and lists by owner", func(t *testing.T) {
		env := newTestEnv(t)
		created, err := env.uc.Agent.Create(ctx, "teacher-1", usecase.AgentInput{
			Name:    "  Ms. Frizzle ",
			Subject: "Science",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.Name).Equal("Ms. Frizzle")
		gt.Value(t, created.OwnerID).Equal("teacher-1")

		env.createAgent(t, "teacher-2")

		agents, err := env.uc.Agent.List(ctx, "teacher-1")
		gt.NoError(t, err).Required()
		gt.Array(t, agents).Length(1).Required()
		gt.Value(t, agents[0].ID).Equal(created.ID)
	})

	t.Run("create validation", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Agent.Create(ctx, "teacher-1", usecase.AgentInput{Subject: "Math"})
		gt.Error(t, err).Is(usecase.ErrValidation)
		_, err = env.uc.Agent.Create(ctx, "teacher-1", usecase.AgentInput{Name: "Pythagoras"})
		gt.Error(t, err).Is(usecase.ErrValidation)
		_, err = env.uc.Agent.Create(ctx, "", usecase.AgentInput{Name: "Pythagoras", Subject: "Math"})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("anyone can read but only the owner can change", func(t *testing.T) {
		env := newTestEnv(t)
		agent := env.createAgent(t, "teacher-1")

		got, err := env.uc.Agent.Get(ctx, agent.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Subject).Equal("Biology")

		input := usecase.AgentInput{Name: "Dr. Darwin", Subject: "Evolution"}
		_, err = env.uc.Agent.Update(ctx, "student-1", agent.ID, input)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)

		updated, err := env.uc.Agent.Update(ctx, "teacher-1", agent.ID, input)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("Dr. Darwin")
		gt.Value(t, updated.Subject).Equal("Evolution")

		gt.Error(t, env.uc.Agent.Delete(ctx, "student-1", agent.ID)).Is(usecase.ErrAccessDenied)
	})

	t.Run("missing agent", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Agent.Get(ctx, "missing")
		gt.Error(t, err).Is(usecase.ErrAgentNotFound)
		gt.Error(t, env.uc.Agent.Delete(ctx, "teacher-1", "missing")).Is(usecase.ErrAgentNotFound)
	})

	t.Run("delete cascades to documents and vectors", func(t *testing.T) {
		env := newTestEnv(t)
		agent := env.createAgent(t, "teacher-1")
		other := env.createAgent(t, "teacher-1")

		doc, err := env.repo.Document().Create(ctx, &model.Document{AgentID: agent.ID, Title: "Cells"})
		gt.NoError(t, err).Required()
		env.addVector(t, "a0", agent.ID, doc.ID, "cells")
		env.addVector(t, "a1", agent.ID, doc.ID, "more cells")
		env.addVector(t, "o0", other.ID, "doc-other", "atoms")

		gt.NoError(t, env.uc.Agent.Delete(ctx, "teacher-1", agent.ID)).Required()

		_, err = env.repo.Agent().Get(ctx, agent.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = env.repo.Document().Get(ctx, doc.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Number(t, env.vectors.Len()).Equal(1)
	})
}
