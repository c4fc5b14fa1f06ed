// Package objects translates client object references into backing-store
// paths, locates objects across the configured directories, and handles
// uploads and ranged reads.
package objects

import (
	"context"
	"fmt"
	"strings"

	"onlyu-media/internal/shared/storage/object"
)

// Config carries the directory layout and policy knobs.
type Config struct {
	BucketName        string
	BucketPrefix      string
	PublicSearchPaths []string
	PrivateObjectDir  string
	EnforceReadACL    bool
	AllowedTypes      []string
}

// Service ties the resolver, normalizer and locator to one store.
type Service struct {
	store      object.Store
	resolver   *BucketResolver
	normalizer *Normalizer

	public  []Dir
	private *Dir

	enforceReadACL bool
	allowedTypes   []string
}

// NewService builds a Service over store.
func NewService(store object.Store, cfg Config) *Service {
	public := parseDirs(cfg.PublicSearchPaths)
	var private *Dir
	if d, ok := parseDir(cfg.PrivateObjectDir); ok {
		private = &d
	}

	all := append([]Dir{}, public...)
	if private != nil {
		all = append(all, *private)
	}

	allowed := make([]string, 0, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			allowed = append(allowed, t)
		}
	}

	return &Service{
		store:          store,
		resolver:       NewBucketResolver(store, cfg.BucketName, cfg.BucketPrefix, all),
		normalizer:     NewNormalizer(all),
		public:         public,
		private:        private,
		enforceReadACL: cfg.EnforceReadACL,
		allowedTypes:   allowed,
	}
}

// Bucket returns the resolved bucket.
func (s *Service) Bucket(ctx context.Context) (string, error) {
	return s.resolver.Resolve(ctx)
}

// Normalize returns the canonical form of a client reference.
func (s *Service) Normalize(raw string) string {
	return s.normalizer.Normalize(raw)
}

// ReadACLEnforced reports whether private objects are owner-only on read.
func (s *Service) ReadACLEnforced() bool {
	return s.enforceReadACL
}

// layout qualifies bare directory entries with the resolved bucket.
func (s *Service) layout(ctx context.Context) (public []Dir, private *Dir, err error) {
	bucket, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	public = make([]Dir, 0, len(s.public))
	for _, d := range s.public {
		public = append(public, d.qualify(bucket))
	}
	if s.private != nil {
		d := s.private.qualify(bucket)
		private = &d
	}
	return public, private, nil
}

func (s *Service) publicDir(ctx context.Context) (Dir, error) {
	public, _, err := s.layout(ctx)
	if err != nil {
		return Dir{}, err
	}
	if len(public) == 0 {
		return Dir{}, fmt.Errorf("%w: no public search path configured", ErrConfiguration)
	}
	return public[0], nil
}

func (s *Service) privateDir(ctx context.Context) (Dir, error) {
	_, private, err := s.layout(ctx)
	if err != nil {
		return Dir{}, err
	}
	if private == nil {
		return Dir{}, fmt.Errorf("%w: no private object dir configured", ErrConfiguration)
	}
	return *private, nil
}
