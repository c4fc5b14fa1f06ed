package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"onlyu-media/internal/objects"
	"onlyu-media/internal/shared/telemetry"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

// ObjectIndex is the slice of the object service used to validate and tag
// uploaded objects.
type ObjectIndex interface {
	Normalize(raw string) string
	Locate(ctx context.Context, canonicalPath string) (objects.Handle, error)
	Policy(ctx context.Context, h objects.Handle) (objects.ACLPolicy, bool, error)
	SetPolicy(ctx context.Context, h objects.Handle, p objects.ACLPolicy) error
	ReadACLEnforced() bool
}

// DeleteHook runs after a record is soft-deleted. Errors are logged and do
// not fail the delete.
type DeleteHook func(ctx context.Context, rec Record) error

// Service contains business logic for content records.
type Service struct {
	Objects  ObjectIndex
	Repo     Repo
	onDelete []DeleteHook
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(objs ObjectIndex, repo Repo) *Service {
	return &Service{
		Objects: objs,
		Repo:    repo,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OnDelete registers a hook to run after each successful delete.
func (s *Service) OnDelete(hook DeleteHook) {
	if hook != nil {
		s.onDelete = append(s.onDelete, hook)
	}
}

// CompleteInput is the client's report that an upload finished.
type CompleteInput struct {
	ObjectPath  string
	FileName    string
	ContentType string
	Size        int64
	Visibility  string
	Title       string
}

// CompleteResult identifies the persisted record. Warning is set when the
// object is valid but its policy or record could not be saved.
type CompleteResult struct {
	ObjectPath string
	ContentID  string
	Warning    string
}

// Complete normalizes the reported path, checks that the object exists and
// is not claimed by another user, tags it with the caller's policy and records
// it.
func (s *Service) Complete(ctx context.Context, ownerID string, in CompleteInput) (CompleteResult, error) {
	raw := strings.TrimSpace(in.ObjectPath)
	if raw == "" {
		return CompleteResult{}, fmt.Errorf("%w: objectPath is required", ErrInvalidInput)
	}
	if ownerID == "" {
		return CompleteResult{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	canonical := s.Objects.Normalize(raw)
	h, err := s.Objects.Locate(ctx, canonical)
	if err != nil {
		switch {
		case errors.Is(err, objects.ErrInvalidPath):
			return CompleteResult{}, fmt.Errorf("%w: objectPath is not an object reference", ErrInvalidInput)
		case errors.Is(err, objects.ErrNotFound):
			return CompleteResult{}, fmt.Errorf("%w: %s", ErrNotFound, canonical)
		default:
			return CompleteResult{}, err
		}
	}

	visibility, err := s.visibility(in.Visibility, h)
	if err != nil {
		return CompleteResult{}, err
	}

	existing, ok, err := s.Objects.Policy(ctx, h)
	if err != nil {
		return CompleteResult{}, err
	}
	if ok && existing.Owner != "" && existing.Owner != ownerID {
		return CompleteResult{}, ErrForbidden
	}
	// An unowned private object would make the first claimant its reader.
	if (!ok || existing.Owner == "") && !h.Public && s.Objects.ReadACLEnforced() {
		return CompleteResult{}, fmt.Errorf("%w: object has no owner policy", ErrForbidden)
	}

	fields := map[string]any{
		"object_path": canonical,
		"owner_id":    ownerID,
		"request_id":  requestIDFromContext(ctx),
	}
	var warnings []string
	policy := objects.ACLPolicy{Owner: ownerID, Visibility: visibility}
	if ok {
		policy.ACLRules = existing.ACLRules
	}
	if err := s.Objects.SetPolicy(ctx, h, policy); err != nil {
		fields["error"] = err.Error()
		telemetry.Warn("content.complete.acl_failed", fields)
		warnings = append(warnings, "access policy was not attached: "+err.Error())
	}

	rec := Record{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ObjectPath:  canonical,
		StoragePath: h.StoragePath(),
		FileName:    fileName(in.FileName, h),
		ContentType: contentType(in.ContentType, h),
		SizeBytes:   size(in.Size, h),
		Visibility:  string(visibility),
		Title:       strings.TrimSpace(in.Title),
		CreatedAt:   s.now(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		fields["error"] = err.Error()
		telemetry.Warn("content.complete.persist_failed", fields)
		warnings = append(warnings, "content metadata was not saved: "+err.Error())
		return CompleteResult{ObjectPath: canonical, Warning: strings.Join(warnings, "; ")}, nil
	}

	return CompleteResult{ObjectPath: canonical, ContentID: rec.ID, Warning: strings.Join(warnings, "; ")}, nil
}

// List returns the owner's live records, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Delete soft-deletes the owner's record and runs the on-delete hooks.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: owner and id are required", ErrInvalidInput)
	}
	rec, err := s.Repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, ownerID, id); err != nil {
		return err
	}

	for _, hook := range s.onDelete {
		if err := hook(ctx, rec); err != nil {
			telemetry.Error("content.delete.hook_failed", map[string]any{
				"content_id":  rec.ID,
				"object_path": rec.ObjectPath,
				"request_id":  requestIDFromContext(ctx),
				"error":       err.Error(),
			})
		}
	}
	return nil
}

func (s *Service) visibility(raw string, h objects.Handle) (objects.Visibility, error) {
	if strings.TrimSpace(raw) == "" {
		if h.Public {
			return objects.VisibilityPublic, nil
		}
		return objects.VisibilityPrivate, nil
	}
	v, err := objects.ParseVisibility(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return v, nil
}

func fileName(reported string, h objects.Handle) string {
	if name := strings.TrimSpace(reported); name != "" {
		return name
	}
	return h.Name()
}

func contentType(reported string, h objects.Handle) string {
	if ct := strings.TrimSpace(reported); ct != "" {
		return ct
	}
	return objects.ContentTypeFor(h.Name())
}

func size(reported int64, h objects.Handle) int64 {
	if reported > 0 {
		return reported
	}
	if h.Size > 0 {
		return h.Size
	}
	return 0
}
