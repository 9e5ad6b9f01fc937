package config

import (
	"context"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/repository/firestore"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/chromem"
	vsfirestore "github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/firestore"
	vsmemory "github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/memory"
	"github.com/RafieAmandio/Teacher-RAG/pkg/vectorstore/pgvector"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// VectorStore holds CLI flags for the chunk vector backend
type VectorStore struct {
	backend     string
	collection  string
	chromemPath string
	pgDSN       string
	pgTable     string
}

// Flags returns CLI flags for vector store configuration
func (v *VectorStore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vector-backend",
			Usage:       "Vector store backend (memory, firestore, chromem, pgvector)",
			Value:       "firestore",
			Category:    "Vector Store",
			Sources:     cli.EnvVars("TEACHER_RAG_VECTOR_BACKEND"),
			Destination: &v.backend,
		},
		&cli.StringFlag{
			Name:        "vector-collection",
			Usage:       "Firestore collection or chromem collection holding chunk vectors",
			Category:    "Vector Store",
			Sources:     cli.EnvVars("TEACHER_RAG_VECTOR_COLLECTION"),
			Destination: &v.collection,
		},
		&cli.StringFlag{
			Name:        "chromem-path",
			Usage:       "Directory of the persistent chromem database (in-memory when empty)",
			Category:    "Vector Store",
			Sources:     cli.EnvVars("TEACHER_RAG_CHROMEM_PATH"),
			Destination: &v.chromemPath,
		},
		&cli.StringFlag{
			Name:        "pgvector-dsn",
			Usage:       "PostgreSQL connection string for the pgvector backend",
			Category:    "Vector Store",
			Sources:     cli.EnvVars("TEACHER_RAG_PGVECTOR_DSN"),
			Destination: &v.pgDSN,
		},
		&cli.StringFlag{
			Name:        "pgvector-table",
			Usage:       "Table holding chunk vectors",
			Value:       pgvector.DefaultTable,
			Category:    "Vector Store",
			Sources:     cli.EnvVars("TEACHER_RAG_PGVECTOR_TABLE"),
			Destination: &v.pgTable,
		},
	}
}

// Backend returns the configured backend type
func (v *VectorStore) Backend() string {
	return v.backend
}

// Collection returns the Firestore collection of chunk vectors
func (v *VectorStore) Collection() string {
	if v.collection == "" {
		return vsfirestore.CollectionName
	}
	return v.collection
}

// Configure opens the vector store. Firestore settings are shared with repo.
// The returned function releases connections.
func (v *VectorStore) Configure(ctx context.Context, repo *Repository) (interfaces.VectorStore, func(), error) {
	noop := func() {}

	switch v.backend {
	case "memory":
		logging.Default().Info("Using in-memory vector store (development mode)")
		return vsmemory.New(), noop, nil

	case "firestore":
		if repo.ProjectID() == "" {
			return nil, noop, goerr.Wrap(ErrMissingRequired, "firestore-project-id is required for the firestore vector backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		client, err := firestore.NewClient(ctx, repo.ProjectID(), repo.DatabaseID())
		if err != nil {
			return nil, noop, err
		}
		closer := func() {
			if err := client.Close(); err != nil {
				logging.Default().Error("failed to close firestore client", "error", err.Error())
			}
		}
		logging.Default().Info("Using Firestore vector store", "collection", v.Collection())
		return vsfirestore.New(client, vsfirestore.WithCollection(v.Collection())), closer, nil

	case "chromem":
		var opts []chromem.Option
		if v.collection != "" {
			opts = append(opts, chromem.WithCollection(v.collection))
		}
		store, err := chromem.Open(v.chromemPath, opts...)
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to open chromem vector store")
		}
		logging.Default().Info("Using chromem vector store", "path", v.chromemPath)
		return store, noop, nil

	case "pgvector":
		store, closer, err := v.openPGVector(ctx)
		if err != nil {
			return nil, noop, err
		}
		logging.Default().Info("Using pgvector vector store", "table", v.pgTable)
		return store, closer, nil

	default:
		return nil, noop, goerr.Wrap(ErrUnknownBackend, "invalid vector backend", goerr.V(BackendKey, v.backend))
	}
}

// MigratePGVector creates the pgvector schema for vectors of dimension dim
func (v *VectorStore) MigratePGVector(ctx context.Context, dim int) error {
	store, closer, err := v.openPGVector(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := store.Migrate(ctx, dim); err != nil {
		return goerr.Wrap(err, "failed to migrate pgvector schema")
	}
	return nil
}

func (v *VectorStore) openPGVector(ctx context.Context) (*pgvector.Store, func(), error) {
	if v.pgDSN == "" {
		return nil, nil, goerr.Wrap(ErrMissingRequired, "pgvector-dsn is required for the pgvector backend",
			goerr.V(FlagKey, "pgvector-dsn"))
	}
	pool, err := pgvector.Connect(ctx, v.pgDSN)
	if err != nil {
		return nil, nil, err
	}
	return pgvector.New(pool, pgvector.WithTable(v.pgTable)), pool.Close, nil
}
