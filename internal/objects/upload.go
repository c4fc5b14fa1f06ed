package objects

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"onlyu-media/internal/shared/metrics"
	"onlyu-media/internal/shared/telemetry"
)

const defaultExtension = "bin"

// UploadInput is one object to write.
type UploadInput struct {
	Data        []byte
	FileName    string
	OwnerID     string
	ContentType string
	Visibility  Visibility
}

// UploadResult is returned once the bytes are stored. ACLWarning is set when
// the policy could not be attached; the object is still stored and readable.
type UploadResult struct {
	CanonicalPath string
	StoragePath   string
	Size          int64
	ContentType   string
	ACLWarning    string
}

// Upload writes the bytes under a fresh identifier in the directory chosen by
// visibility, then attaches the ACL policy best-effort.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	visibility := in.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	res, err := s.upload(ctx, in, visibility)
	if err != nil {
		metrics.RecordUpload(string(visibility), "error", 0)
		return UploadResult{}, err
	}
	metrics.RecordUpload(string(visibility), "success", res.Size)
	return res, nil
}

func (s *Service) upload(ctx context.Context, in UploadInput, visibility Visibility) (UploadResult, error) {
	if len(in.Data) == 0 {
		return UploadResult{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	contentType := s.contentType(in.ContentType, in.Data)
	if !s.typeAllowed(contentType) {
		return UploadResult{}, fmt.Errorf("%w: content type %q is not allowed", ErrInvalidInput, contentType)
	}

	var (
		dir Dir
		err error
	)
	switch visibility {
	case VisibilityPublic:
		dir, err = s.publicDir(ctx)
	case VisibilityPrivate:
		dir, err = s.privateDir(ctx)
	default:
		return UploadResult{}, fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, visibility)
	}
	if err != nil {
		return UploadResult{}, err
	}

	name := uuid.NewString() + "." + extension(in.FileName)
	key := dir.Key(name)
	size := int64(len(in.Data))
	if err := s.store.Put(ctx, dir.Bucket, key, bytes.NewReader(in.Data), size, contentType); err != nil {
		return UploadResult{}, fmt.Errorf("write %s: %w", JoinPath(dir.Bucket, key), err)
	}

	res := UploadResult{
		CanonicalPath: canonicalPrefix + name,
		StoragePath:   JoinPath(dir.Bucket, key),
		Size:          size,
		ContentType:   contentType,
	}

	h := Handle{Bucket: dir.Bucket, Key: key, Dir: dir.Path(), Public: visibility == VisibilityPublic, Size: size}
	if err := s.SetPolicy(ctx, h, ACLPolicy{Owner: in.OwnerID, Visibility: visibility}); err != nil {
		res.ACLWarning = "access policy was not attached: " + err.Error()
		metrics.IncACLAttachFailure()
		telemetry.Warn("objects.acl_attach_failed", map[string]any{
			"storage_path": res.StoragePath,
			"owner_id":     in.OwnerID,
			"error":        err.Error(),
		})
	}

	telemetry.Info("objects.uploaded", map[string]any{
		"object_path":  res.CanonicalPath,
		"storage_path": res.StoragePath,
		"size":         res.Size,
		"content_type": res.ContentType,
		"visibility":   string(visibility),
	})
	return res, nil
}

func (s *Service) contentType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared == "" || declared == "application/octet-stream" {
		declared = mimetype.Detect(data).String()
	}
	if base, _, ok := strings.Cut(declared, ";"); ok {
		declared = strings.TrimSpace(base)
	}
	return declared
}

func (s *Service) typeAllowed(contentType string) bool {
	if len(s.allowedTypes) == 0 {
		return true
	}
	for _, prefix := range s.allowedTypes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// extension returns the lower-cased extension of name without the dot, or
// "bin" when there is none usable.
func extension(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
	if ext == "" {
		return defaultExtension
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return defaultExtension
		}
	}
	return ext
}
