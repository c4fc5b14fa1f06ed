package objects

import (
	"context"
	"fmt"
	"strings"

	"onlyu-media/internal/shared/metrics"
	"onlyu-media/internal/shared/telemetry"
)

// BucketLister is the part of object.Store the resolver needs.
type BucketLister interface {
	ListBuckets(ctx context.Context) ([]string, error)
}

// BucketResolver determines the active bucket once per process.
type BucketResolver struct {
	lister    BucketLister
	explicit  string
	prefix    string
	fallbacks []string

	// gate is a one-slot semaphore guarding bucket. Waiting on it honors the
	// caller's context, so a hung listing cannot stall short-deadline callers.
	gate   chan struct{}
	bucket string
}

// NewBucketResolver builds a resolver. dirs are the configured search paths
// and private dir; the bucket segment of the first full-form entry is the last
// resort.
func NewBucketResolver(lister BucketLister, explicit, prefix string, dirs []Dir) *BucketResolver {
	r := &BucketResolver{
		lister:   lister,
		explicit: strings.TrimSpace(explicit),
		prefix:   prefix,
		gate:     make(chan struct{}, 1),
	}
	for _, d := range dirs {
		if d.Bucket != "" {
			r.fallbacks = append(r.fallbacks, d.Bucket)
		}
	}
	return r
}

// Resolve returns the active bucket. The first success is memoized; failures
// are not, so a later call tries again. Concurrent first callers wait on the
// same resolution until their context ends.
func (r *BucketResolver) Resolve(ctx context.Context) (string, error) {
	select {
	case r.gate <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("resolve bucket: %w", ctx.Err())
	}
	defer func() { <-r.gate }()

	if r.bucket != "" {
		return r.bucket, nil
	}

	bucket, err := r.resolve(ctx)
	if err != nil {
		return "", err
	}
	r.bucket = bucket
	telemetry.Info("objects.bucket_resolved", map[string]any{"bucket": bucket})
	return bucket, nil
}

func (r *BucketResolver) resolve(ctx context.Context) (string, error) {
	if r.explicit != "" {
		return r.explicit, nil
	}

	var listErr error
	if r.lister != nil && r.prefix != "" {
		metrics.IncBucketListing()
		names, err := r.lister.ListBuckets(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			listErr = err
			telemetry.Warn("objects.bucket_listing_failed", map[string]any{"error": err.Error()})
		}
		for _, name := range names {
			if strings.HasPrefix(name, r.prefix) {
				return name, nil
			}
		}
	}

	if len(r.fallbacks) > 0 {
		return r.fallbacks[0], nil
	}

	if listErr != nil {
		return "", fmt.Errorf("%w: no bucket matched prefix %q: %w", ErrConfiguration, r.prefix, listErr)
	}
	return "", fmt.Errorf("%w: no bucket configured or matching prefix %q", ErrConfiguration, r.prefix)
}
