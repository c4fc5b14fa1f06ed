package objects

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"onlyu-media/internal/shared/metrics"
	"onlyu-media/internal/shared/storage/object"
)

// Handle identifies a located object.
type Handle struct {
	Bucket string
	Key    string
	// Dir is the storage path of the directory the object was found under.
	Dir string
	// Public is derived from directory placement, never from stored policy.
	Public bool
	// Size is -1 when the probe did not report it.
	Size int64
}

// StoragePath returns /bucket/key.
func (h Handle) StoragePath() string {
	return JoinPath(h.Bucket, h.Key)
}

// Name returns the final key segment.
func (h Handle) Name() string {
	return path.Base(h.Key)
}

type candidate struct {
	dir  Dir
	name string
}

// Locate finds the object behind a canonical /objects/ path, searching public
// search paths in order and then the private dir.
func (s *Service) Locate(ctx context.Context, canonicalPath string) (Handle, error) {
	name, err := entityID(canonicalPath)
	if err != nil {
		return Handle{}, err
	}
	public, private, err := s.layout(ctx)
	if err != nil {
		return Handle{}, err
	}

	cands := make([]candidate, 0, len(public)+1)
	for _, d := range public {
		cands = append(cands, candidate{dir: d, name: name})
	}
	if private != nil {
		cands = append(cands, candidate{dir: *private, name: name})
	}
	return s.search(ctx, public, cands)
}

// LocatePublic searches only the public search paths.
func (s *Service) LocatePublic(ctx context.Context, filePath string) (Handle, error) {
	name := strings.Trim(filePath, "/")
	if name == "" || hasTraversal(name) {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidPath, filePath)
	}
	public, _, err := s.layout(ctx)
	if err != nil {
		return Handle{}, err
	}

	cands := make([]candidate, 0, len(public))
	for _, d := range public {
		cands = append(cands, candidate{dir: d, name: name})
	}
	return s.search(ctx, public, cands)
}

// LocateProxy resolves folder/filename for cross-origin embedding: every public
// search path, then the private dir, then the folder at the bucket root.
func (s *Service) LocateProxy(ctx context.Context, folder, filename string) (Handle, error) {
	if !validSegment(folder) || !validSegment(filename) {
		return Handle{}, fmt.Errorf("%w: %q/%q", ErrInvalidPath, folder, filename)
	}
	bucket, err := s.resolver.Resolve(ctx)
	if err != nil {
		return Handle{}, err
	}
	public, private, err := s.layout(ctx)
	if err != nil {
		return Handle{}, err
	}

	name := folder + "/" + filename
	cands := make([]candidate, 0, len(public)+2)
	for _, d := range public {
		cands = append(cands, candidate{dir: d, name: name})
	}
	if private != nil {
		cands = append(cands, candidate{dir: *private, name: name})
	}
	cands = append(cands, candidate{dir: Dir{Bucket: bucket, Prefix: folder}, name: filename})
	return s.search(ctx, public, cands)
}

func (s *Service) search(ctx context.Context, public []Dir, cands []candidate) (Handle, error) {
	if len(cands) == 0 {
		return Handle{}, fmt.Errorf("%w: no search directories configured", ErrConfiguration)
	}
	for _, cand := range cands {
		key := cand.dir.Key(cand.name)
		size, found, err := s.probe(ctx, cand.dir.Bucket, key)
		if err != nil {
			return Handle{}, fmt.Errorf("locate %s: %w", JoinPath(cand.dir.Bucket, key), err)
		}
		if !found {
			continue
		}
		return Handle{
			Bucket: cand.dir.Bucket,
			Key:    key,
			Dir:    cand.dir.Path(),
			Public: underAny(public, cand.dir.Bucket, key),
			Size:   size,
		}, nil
	}
	return Handle{}, fmt.Errorf("%w: %s", ErrNotFound, cands[0].name)
}

// probe checks existence with a metadata call when the backend has one and
// falls back to opening the object.
func (s *Service) probe(ctx context.Context, bucket, key string) (int64, bool, error) {
	if st, ok := s.store.(object.Stater); ok {
		info, err := st.Stat(ctx, bucket, key)
		switch {
		case errors.Is(err, object.ErrNotFound):
			metrics.RecordLocateProbe("stat", "miss")
			return 0, false, nil
		case err != nil:
			metrics.RecordLocateProbe("stat", "error")
			return 0, false, err
		}
		metrics.RecordLocateProbe("stat", "hit")
		return info.Size, true, nil
	}

	rc, err := s.store.Open(ctx, bucket, key)
	switch {
	case errors.Is(err, object.ErrNotFound):
		metrics.RecordLocateProbe("fetch", "miss")
		return 0, false, nil
	case err != nil:
		metrics.RecordLocateProbe("fetch", "error")
		return 0, false, err
	}
	_ = rc.Close()
	metrics.RecordLocateProbe("fetch", "hit")
	return -1, true, nil
}

// Remove deletes the object behind a canonical path.
func (s *Service) Remove(ctx context.Context, canonicalPath string) (Handle, error) {
	h, err := s.Locate(ctx, canonicalPath)
	if err != nil {
		return Handle{}, err
	}
	if err := s.store.Delete(ctx, h.Bucket, h.Key); err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return h, fmt.Errorf("%w: %s", ErrNotFound, h.StoragePath())
		}
		return h, fmt.Errorf("delete %s: %w", h.StoragePath(), err)
	}
	return h, nil
}

func entityID(canonicalPath string) (string, error) {
	name, ok := strings.CutPrefix(canonicalPath, canonicalPrefix)
	name = strings.Trim(name, "/")
	if !ok || name == "" || hasTraversal(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, canonicalPath)
	}
	return name, nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func underAny(dirs []Dir, bucket, key string) bool {
	for _, d := range dirs {
		if d.contains(bucket, key) {
			return true
		}
	}
	return false
}
