// Package gcs implements object.Store on Google Cloud Storage, including the
// sidecar-issued credentials used by hosted object-storage buckets.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"onlyu-media/internal/shared/storage/object"
)

// Options configures the GCS client.
type Options struct {
	ProjectID string
	// TokenURL, when set, is polled for short-lived access tokens instead of
	// using application default credentials.
	TokenURL string
}

// Store implements object.Store using Google Cloud Storage.
type Store struct {
	client    *storage.Client
	projectID string
}

// New creates a GCS-backed object store. Extra client options are appended
// after the ones derived from opts.
func New(ctx context.Context, opts Options, extra ...option.ClientOption) (*Store, error) {
	var clientOpts []option.ClientOption
	if url := strings.TrimSpace(opts.TokenURL); url != "" {
		src := &sidecarTokenSource{url: url, client: &http.Client{Timeout: 10 * time.Second}}
		clientOpts = append(clientOpts, option.WithTokenSource(oauth2.ReuseTokenSource(nil, src)))
	}
	clientOpts = append(clientOpts, extra...)

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed to create client: %w", err)
	}
	return &Store{client: client, projectID: strings.TrimSpace(opts.ProjectID)}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ListBuckets lists buckets in the configured project.
func (s *Store) ListBuckets(ctx context.Context) ([]string, error) {
	if s.projectID == "" {
		return nil, errors.New("gcs: project id is required to list buckets")
	}
	var names []string
	it := s.client.Buckets(ctx, s.projectID)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: list buckets: %w", err)
		}
		names = append(names, attrs.Name)
	}
}

// Open opens a reader for bucket/key.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: open %s/%s: %w", bucket, key, mapErr(err))
	}
	return r, nil
}

// Put writes the reader to bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	written, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: upload write failed for %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: upload close failed for %s/%s: %w", bucket, key, err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("gcs: wrote %d bytes to %s/%s, expected %d", written, bucket, key, size)
	}
	return nil
}

// Stat fetches object attributes.
func (s *Store) Stat(ctx context.Context, bucket, key string) (object.Info, error) {
	attrs, err := s.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return object.Info{}, fmt.Errorf("gcs: attrs %s/%s: %w", bucket, key, mapErr(err))
	}
	return object.Info{Size: attrs.Size, ContentType: attrs.ContentType, Metadata: attrs.Metadata}, nil
}

// SetMetadata replaces the object's custom metadata.
func (s *Store) SetMetadata(ctx context.Context, bucket, key string, meta map[string]string) error {
	_, err := s.client.Bucket(bucket).Object(key).Update(ctx, storage.ObjectAttrsToUpdate{Metadata: meta})
	if err != nil {
		return fmt.Errorf("gcs: update metadata %s/%s: %w", bucket, key, mapErr(err))
	}
	return nil
}

// Delete removes bucket/key.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("gcs: delete %s/%s: %w", bucket, key, mapErr(err))
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %v", object.ErrNotFound, err)
	}
	return err
}

var (
	_ object.Store  = (*Store)(nil)
	_ object.Stater = (*Store)(nil)
)
