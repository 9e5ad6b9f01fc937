package cli

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/cli/config"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var vectorCfg config.VectorStore
	var llmCfg config.LLM
	var dryRun bool

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, vectorCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Preview changes without applying",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create Firestore indexes and the pgvector schema",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			dim := llmCfg.Dimension()

			logger.Info("Migrate configuration",
				"repository", repoCfg.Backend(),
				"vector", vectorCfg.Backend(),
				"projectID", repoCfg.ProjectID(),
				"databaseID", repoCfg.DatabaseID(),
				"dimension", dim,
				"dryRun", dryRun)

			usesFirestore := repoCfg.Backend() == "firestore" || vectorCfg.Backend() == "firestore"
			if usesFirestore {
				if repoCfg.ProjectID() == "" {
					return goerr.Wrap(config.ErrMissingRequired, "firestore-project-id is required",
						goerr.V(config.FlagKey, "firestore-project-id"))
				}
				indexConfig := getIndexConfig(repoCfg.Backend() == "firestore", vectorCfg.Backend() == "firestore", vectorCfg.Collection(), dim)
				if err := migrateFirestore(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID(), indexConfig, dryRun); err != nil {
					return err
				}
			}

			if vectorCfg.Backend() == "pgvector" {
				if dryRun {
					logger.Info("Dry run mode - skipping pgvector schema", "dimension", dim)
				} else if err := vectorCfg.MigratePGVector(ctx, dim); err != nil {
					return err
				}
				logger.Info("pgvector schema ready", "dimension", dim)
			}

			if !usesFirestore && vectorCfg.Backend() != "pgvector" {
				logger.Info("Nothing to migrate for the selected backends")
			}
			return nil
		},
	}
}

func migrateFirestore(ctx context.Context, projectID, databaseID string, indexConfig *fireconf.Config, dryRun bool) error {
	logger := logging.Default()

	// Create fireconf client
	client, err := fireconf.NewClient(ctx, projectID, databaseID)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the Firestore index configuration for the selected backends
func getIndexConfig(repository, vectors bool, vectorCollection string, dim int) *fireconf.Config {
	cfg := &fireconf.Config{}

	if repository {
		cfg.Collections = append(cfg.Collections,
			// ListByOwner: OwnerID ASC, CreatedAt DESC
			fireconf.Collection{
				Name: "agents",
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "OwnerID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			// ListByAgent: AgentID ASC, CreatedAt DESC
			fireconf.Collection{
				Name: "documents",
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "AgentID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			// ListByUser: UserID ASC, UpdatedAt DESC
			// ListByAgent: AgentID ASC, UpdatedAt DESC
			fireconf.Collection{
				Name: "chats",
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "UserID", Order: fireconf.OrderAscending},
							{Path: "UpdatedAt", Order: fireconf.OrderDescending},
						},
					},
					{
						Fields: []fireconf.IndexField{
							{Path: "AgentID", Order: fireconf.OrderAscending},
							{Path: "UpdatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		)
	}

	if vectors {
		// Vector search pre-filtered by agent
		cfg.Collections = append(cfg.Collections, fireconf.Collection{
			Name: vectorCollection,
			Indexes: []fireconf.Index{
				{
					Fields: []fireconf.IndexField{
						{Path: "AgentID", Order: fireconf.OrderAscending},
						{
							Path: "Embedding",
							Vector: &fireconf.VectorConfig{
								Dimension: dim,
							},
						},
					},
				},
			},
		})
	}

	return cfg
}
