package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by every backend when the requested object or bucket is absent.
var ErrNotFound = errors.New("object not found")

// Store defines the contract for reading and writing objects in named buckets.
type Store interface {
	ListBuckets(ctx context.Context) ([]string, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	SetMetadata(ctx context.Context, bucket, key string, meta map[string]string) error
	Delete(ctx context.Context, bucket, key string) error
}

// Info describes a stored object without its body.
type Info struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Stater is implemented by backends that can answer existence and metadata
// questions without transferring the object body.
type Stater interface {
	Stat(ctx context.Context, bucket, key string) (Info, error)
}
