package health

import (
	"context"
	"time"
)

const bucketCheckTimeout = 3 * time.Second

// BucketSource reports the active storage bucket.
type BucketSource interface {
	Bucket(ctx context.Context) (string, error)
}

// Status is the health payload. OK reflects the process only; an unresolved
// bucket is reported in BucketError so probes stay green while storage
// configuration is fixed.
type Status struct {
	OK          bool   `json:"ok"`
	Bucket      string `json:"bucket"`
	BucketError string `json:"bucketError,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	buckets BucketSource
}

// NewService constructs a new health service.
func NewService(buckets BucketSource) *Service {
	return &Service{buckets: buckets}
}

// Status returns the health payload.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true}
	if s == nil || s.buckets == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()
	bucket, err := s.buckets.Bucket(ctx)
	if err != nil {
		st.BucketError = err.Error()
		return st
	}
	st.Bucket = bucket
	return st
}
