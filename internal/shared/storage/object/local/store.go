package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"onlyu-media/internal/shared/storage/object"
)

const metaDir = ".meta"

// Store implements object.Store on the local filesystem. Buckets are the
// top-level directories under the root; object metadata lives in a sidecar
// JSON file under <root>/.meta/<bucket>/<key>.json.
type Store struct {
	baseDir string
}

type sidecar struct {
	ContentType string            `json:"contentType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// ListBuckets returns the directories directly under the root.
func (s *Store) ListBuckets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store root: %w", err)
	}
	var buckets []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			buckets = append(buckets, e.Name())
		}
	}
	return buckets, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, mapErr(err)
	}
	return f, nil
}

// Put writes the reader to disk at bucket/key and records its content type.
func (s *Store) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("write body: wrote %d bytes, expected %d", written, size)
	}
	return s.writeSidecar(bucket, key, sidecar{ContentType: contentType})
}

// SetMetadata replaces the custom metadata of an existing object.
func (s *Store) SetMetadata(ctx context.Context, bucket, key string, meta map[string]string) error {
	info, err := s.Stat(ctx, bucket, key)
	if err != nil {
		return err
	}
	return s.writeSidecar(bucket, key, sidecar{ContentType: info.ContentType, Metadata: meta})
}

// Stat reports size, content type and metadata without opening the body.
func (s *Store) Stat(ctx context.Context, bucket, key string) (object.Info, error) {
	if err := ctx.Err(); err != nil {
		return object.Info{}, err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return object.Info{}, err
	}
	fi, err := os.Stat(fullPath)
	if err != nil {
		return object.Info{}, mapErr(err)
	}
	if fi.IsDir() {
		return object.Info{}, object.ErrNotFound
	}
	sc, err := s.readSidecar(bucket, key)
	if err != nil {
		return object.Info{}, err
	}
	return object.Info{Size: fi.Size(), ContentType: sc.ContentType, Metadata: sc.Metadata}, nil
}

// Delete removes the object and its metadata.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		return mapErr(err)
	}
	metaPath, _ := s.sidecarPath(bucket, key)
	if err := os.Remove(metaPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove metadata: %w", err)
	}
	return nil
}

func (s *Store) objectPath(bucket, key string) (string, error) {
	cleanKey, err := cleanRel(bucket, key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, bucket, cleanKey), nil
}

func (s *Store) sidecarPath(bucket, key string) (string, error) {
	cleanKey, err := cleanRel(bucket, key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, metaDir, bucket, cleanKey+".json"), nil
}

func (s *Store) readSidecar(bucket, key string) (sidecar, error) {
	var sc sidecar
	p, err := s.sidecarPath(bucket, key)
	if err != nil {
		return sc, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sc, nil
		}
		return sc, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("decode metadata: %w", err)
	}
	return sc, nil
}

func (s *Store) writeSidecar(bucket, key string, sc sidecar) error {
	p, err := s.sidecarPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir metadata: %w", err)
	}
	raw, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func cleanRel(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || strings.HasPrefix(bucket, ".") {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return clean, nil
}

// mapErr treats a key that walks through an existing file as absent.
func mapErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return fmt.Errorf("%w: %v", object.ErrNotFound, err)
	}
	return err
}

var (
	_ object.Store  = (*Store)(nil)
	_ object.Stater = (*Store)(nil)
)
