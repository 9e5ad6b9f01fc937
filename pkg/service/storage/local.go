package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/model"
	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// Local stores uploads under a directory on the local filesystem
type Local struct {
	root string
}

var _ interfaces.FileStorage = &Local{}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, goerr.New("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage root", goerr.V("root", root))
	}
	return &Local{root: root}, nil
}

func (s *Local) path(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Put writes to a temporary file first so readers never see a partial upload
func (s *Local) Put(ctx context.Context, key string, r io.Reader) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("key", key))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("key", key))
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		safe.Close(ctx, tmp)
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write upload", goerr.V("key", key))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close upload", goerr.V("key", key))
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to move upload into place", goerr.V("key", key))
	}
	return nil
}

func (s *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(model.ErrNotFound, "upload not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to open upload", goerr.V("key", key))
	}
	return f, nil
}

// Delete is idempotent
func (s *Local) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to delete upload", goerr.V("key", key))
	}
	return nil
}
