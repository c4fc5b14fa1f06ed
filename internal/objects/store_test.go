package objects

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"onlyu-media/internal/shared/storage/object"
)

type memObject struct {
	data []byte
	ct   string
	meta map[string]string
}

// memStore is an object.Store without Stat, so probes fall back to Open.
type memStore struct {
	mu         sync.Mutex
	buckets    []string
	objects    map[string]memObject
	listCalls  int
	listErr    error
	opens      int
	openErr    error
	setMetaErr error
}

func newMemStore(buckets ...string) *memStore {
	return &memStore{buckets: buckets, objects: make(map[string]memObject)}
}

func (m *memStore) ListBuckets(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.buckets...), nil
}

func (m *memStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", object.ErrNotFound, bucket, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *memStore) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = memObject{data: data, ct: contentType}
	return nil
}

func (m *memStore) SetMetadata(ctx context.Context, bucket, key string, meta map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setMetaErr != nil {
		return m.setMetaErr
	}
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return object.ErrNotFound
	}
	obj.meta = meta
	m.objects[bucket+"/"+key] = obj
	return nil
}

func (m *memStore) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[bucket+"/"+key]; !ok {
		return object.ErrNotFound
	}
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *memStore) put(storagePath string, data []byte) {
	bucket, key, err := ParsePath(storagePath)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = memObject{data: data}
}

// statStore adds a metadata probe to memStore.
type statStore struct {
	*memStore
	stats   int
	statErr error
}

func (s *statStore) Stat(ctx context.Context, bucket, key string) (object.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats++
	if s.statErr != nil {
		return object.Info{}, s.statErr
	}
	obj, ok := s.objects[bucket+"/"+key]
	if !ok {
		return object.Info{}, object.ErrNotFound
	}
	return object.Info{Size: int64(len(obj.data)), ContentType: obj.ct, Metadata: obj.meta}, nil
}

func testConfig() Config {
	return Config{
		BucketName:        "bucket-1",
		PublicSearchPaths: []string{"/bucket-1/public", "/bucket-1/shared/public"},
		PrivateObjectDir:  "/bucket-1/.private",
		AllowedTypes:      []string{"image/", "video/"},
	}
}
