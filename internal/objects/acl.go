package objects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"onlyu-media/internal/shared/storage/object"
)

// aclMetadataKey is the custom-metadata key holding the JSON policy.
const aclMetadataKey = "aclpolicy"

// Visibility is fixed at upload and selects the target directory family.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility accepts "public", "private" or empty (public).
func ParseVisibility(raw string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(VisibilityPublic):
		return VisibilityPublic, nil
	case string(VisibilityPrivate):
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("%w: visibility must be public or private", ErrInvalidInput)
	}
}

// ACLRule is carried with the policy but not evaluated.
type ACLRule struct {
	Group      string `json:"group"`
	Permission string `json:"permission"`
}

// ACLPolicy is advisory: directory placement decides visibility on read.
type ACLPolicy struct {
	Owner      string     `json:"owner"`
	Visibility Visibility `json:"visibility"`
	ACLRules   []ACLRule  `json:"aclRules,omitempty"`
}

// SetPolicy stores the policy in the object's custom metadata.
func (s *Service) SetPolicy(ctx context.Context, h Handle, p ACLPolicy) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode acl policy: %w", err)
	}
	if err := s.store.SetMetadata(ctx, h.Bucket, h.Key, map[string]string{aclMetadataKey: string(raw)}); err != nil {
		return fmt.Errorf("set acl policy on %s: %w", h.StoragePath(), err)
	}
	return nil
}

// Policy reads the stored policy. ok is false when the object has none or the
// backend cannot report metadata.
func (s *Service) Policy(ctx context.Context, h Handle) (p ACLPolicy, ok bool, err error) {
	st, isStater := s.store.(object.Stater)
	if !isStater {
		return ACLPolicy{}, false, nil
	}
	info, err := st.Stat(ctx, h.Bucket, h.Key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return ACLPolicy{}, false, fmt.Errorf("%w: %s", ErrNotFound, h.StoragePath())
		}
		return ACLPolicy{}, false, fmt.Errorf("read acl policy on %s: %w", h.StoragePath(), err)
	}
	raw, found := info.Metadata[aclMetadataKey]
	if !found || raw == "" {
		return ACLPolicy{}, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ACLPolicy{}, false, fmt.Errorf("decode acl policy on %s: %w", h.StoragePath(), err)
	}
	return p, true, nil
}

// AuthorizeRead allows everything unless read enforcement is on. With it on,
// objects outside the public directories are served only to the policy owner.
func (s *Service) AuthorizeRead(ctx context.Context, h Handle, userID string) error {
	if !s.enforceReadACL || h.Public {
		return nil
	}
	p, ok, err := s.Policy(ctx, h)
	if err != nil {
		return err
	}
	if !ok || p.Owner == "" || p.Owner != userID {
		return ErrForbidden
	}
	return nil
}
