package content

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Record // ownerId -> records
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create appends a record for its owner.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.OwnerID] = append(r.data[rec.OwnerID], rec)
	return nil
}

// GetByID returns a live record by ID for an owner.
func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.data[ownerID] {
		if rec.ID == id && rec.DeletedAt == nil {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// SoftDelete stamps deleted_at on a live record.
func (r *MemoryRepo) SoftDelete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.data[ownerID]
	for i := range recs {
		if recs[i].ID == id && recs[i].DeletedAt == nil {
			at := r.now()
			recs[i].DeletedAt = &at
			return nil
		}
	}
	return ErrNotFound
}

// Purge drops a soft-deleted record.
func (r *MemoryRepo) Purge(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for owner, recs := range r.data {
		for i := range recs {
			if recs[i].ID == id && recs[i].DeletedAt != nil {
				r.data[owner] = append(recs[:i:i], recs[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// ListByOwner returns live records for an owner, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	recs := make([]Record, 0, len(r.data[ownerID]))
	for _, rec := range r.data[ownerID] {
		if rec.DeletedAt == nil {
			recs = append(recs, rec)
		}
	}
	r.mu.RUnlock()

	if offset >= len(recs) {
		return []Record{}, nil
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	end := len(recs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return recs[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
