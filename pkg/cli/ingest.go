package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RafieAmandio/Teacher-RAG/pkg/cli/config"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/types"
	"github.com/RafieAmandio/Teacher-RAG/pkg/usecase"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/safe"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var backend backendConfig
	var userID string
	var agentID string
	var agentName string
	var subject string
	var title string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Usage:       "Caller ID owning the agent",
			Required:    true,
			Sources:     cli.EnvVars("TEACHER_RAG_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Agent receiving the document",
			Destination: &agentID,
		},
		&cli.StringFlag{
			Name:        "agent-name",
			Usage:       "Create a new agent with this name when --agent-id is not set",
			Destination: &agentName,
		},
		&cli.StringFlag{
			Name:        "subject",
			Usage:       "Subject of the agent created with --agent-name",
			Destination: &subject,
		},
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Document title (defaults to the file name)",
			Destination: &title,
		},
	}
	flags = append(flags, backend.Flags()...)

	return &cli.Command{
		Name:      "ingest",
		Usage:     "Ingest a course document and wait for it to become searchable",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.Wrap(config.ErrInvalidConfig, "exactly one file must be given")
			}
			filePath := c.Args().First()

			rt, err := backend.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			id, err := resolveAgent(ctx, rt.uc, userID, agentID, agentName, subject)
			if err != nil {
				return err
			}

			f, err := os.Open(filepath.Clean(filePath))
			if err != nil {
				return goerr.Wrap(err, "failed to open file", goerr.V("path", filePath))
			}
			defer safe.Close(ctx, f)

			if title == "" {
				title = filepath.Base(filePath)
			}

			job, err := rt.uc.Ingestion.Upload(ctx, usecase.UploadInput{
				CallerID: userID,
				AgentID:  id,
				Title:    title,
				FileName: filepath.Base(filePath),
				Body:     f,
			})
			if err != nil {
				return err
			}
			logging.Default().Info("Ingestion started", "job_id", job.ID, "agent_id", id)

			if err := rt.uc.Wait(ctx); err != nil {
				return goerr.Wrap(err, "interrupted while waiting for ingestion", goerr.V("job_id", job.ID))
			}

			status, err := rt.uc.Ingestion.Status(ctx, job.ID.String())
			if err != nil {
				return err
			}

			switch status.Status {
			case types.JobStatusCompleted:
				color.New(color.FgGreen, color.Bold).Fprintf(os.Stdout, "completed: ")
				fmt.Fprintf(os.Stdout, "document %s of agent %s\n", status.DocumentID, id)
				return nil
			case types.JobStatusFailed:
				color.New(color.FgRed, color.Bold).Fprintf(os.Stdout, "failed: ")
				fmt.Fprintln(os.Stdout, status.Error)
				return goerr.New("ingestion failed", goerr.V("job_id", job.ID), goerr.V("reason", status.Error))
			default:
				return goerr.New("unexpected job state after wait",
					goerr.V("job_id", job.ID),
					goerr.V("status", status.Status))
			}
		},
	}
}

// resolveAgent returns agentID, or creates an agent owned by userID when only a name is given
func resolveAgent(ctx context.Context, uc *usecase.UseCases, userID, agentID, name, subject string) (model.AgentID, error) {
	if agentID != "" {
		return model.AgentID(agentID), nil
	}
	if name == "" {
		return "", goerr.Wrap(config.ErrMissingRequired, "either --agent-id or --agent-name is required",
			goerr.V(config.FlagKey, "agent-id"))
	}

	agent, err := uc.Agent.Create(ctx, userID, usecase.AgentInput{
		Name:    name,
		Subject: subject,
	})
	if err != nil {
		return "", err
	}
	logging.Default().Info("Agent created", "agent_id", agent.ID, "name", agent.Name)
	return agent.ID, nil
}
