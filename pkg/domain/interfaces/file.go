package interfaces

import (
	"context"
	"io"
)

// FileStorage holds uploaded files until ingestion consumes them
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor turns a stored file into plain text. name is used to pick the parser.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}
