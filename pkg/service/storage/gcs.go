package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// GCS stores uploads as objects in a Google Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.FileStorage = &GCS{}

type GCSOption func(*GCS)

// WithGCSPrefix places every object under prefix
func WithGCSPrefix(prefix string) GCSOption {
	return func(s *GCS) {
		s.prefix = prefix
	}
}

func NewGCS(client *storage.Client, bucket string, opts ...GCSOption) (*GCS, error) {
	if client == nil {
		return nil, goerr.New("storage client is required")
	}
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	s := &GCS{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *GCS) object(key string) (*storage.ObjectHandle, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	name := cleaned
	if s.prefix != "" {
		name = s.prefix + "/" + cleaned
	}
	return s.client.Bucket(s.bucket).Object(name), nil
}

func (s *GCS) Put(ctx context.Context, key string, r io.Reader) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}

	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", key))
	}
	return nil
}

func (s *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.object(key)
	if err != nil {
		return nil, err
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(model.ErrNotFound, "upload not found",
				goerr.V("bucket", s.bucket),
				goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", key))
	}
	return r, nil
}

func (s *GCS) Delete(ctx context.Context, key string) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", key))
	}
	return nil
}
