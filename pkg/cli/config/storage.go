package config

import (
	"context"

	gcs "cloud.google.com/go/storage"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/service/storage"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for upload storage
type Storage struct {
	backend string
	dir     string
	bucket  string
	prefix  string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Upload storage backend (local or gcs)",
			Value:       "local",
			Category:    "Storage",
			Sources:     cli.EnvVars("TEACHER_RAG_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-dir",
			Usage:       "Directory for uploaded files (local backend)",
			Value:       "./data/uploads",
			Category:    "Storage",
			Sources:     cli.EnvVars("TEACHER_RAG_STORAGE_DIR"),
			Destination: &s.dir,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "GCS bucket for uploaded files (gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("TEACHER_RAG_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("TEACHER_RAG_STORAGE_PREFIX"),
			Destination: &s.prefix,
		},
	}
}

// Configure opens the upload storage. The returned function releases the client.
func (s *Storage) Configure(ctx context.Context) (interfaces.FileStorage, func(), error) {
	noop := func() {}

	switch s.backend {
	case "local":
		local, err := storage.NewLocal(s.dir)
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to open local storage")
		}
		logging.Default().Info("Using local upload storage", "dir", s.dir)
		return local, noop, nil

	case "gcs":
		if s.bucket == "" {
			return nil, noop, goerr.Wrap(ErrMissingRequired, "storage-bucket is required for the gcs backend",
				goerr.V(FlagKey, "storage-bucket"))
		}
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, noop, goerr.Wrap(err, "failed to create GCS client")
		}
		closer := func() {
			if err := client.Close(); err != nil {
				logging.Default().Error("failed to close GCS client", "error", err.Error())
			}
		}
		store, err := storage.NewGCS(client, s.bucket, storage.WithGCSPrefix(s.prefix))
		if err != nil {
			closer()
			return nil, noop, err
		}
		logging.Default().Info("Using GCS upload storage", "bucket", s.bucket, "prefix", s.prefix)
		return store, closer, nil

	default:
		return nil, noop, goerr.Wrap(ErrUnknownBackend, "invalid storage backend", goerr.V(BackendKey, s.backend))
	}
}
