package content

import "context"

// Repo defines persistence operations for content records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error)
	GetByID(ctx context.Context, ownerID, id string) (Record, error)
	SoftDelete(ctx context.Context, ownerID, id string) error
	// Purge removes a record that was already soft-deleted. Missing rows are
	// not an error.
	Purge(ctx context.Context, id string) error
}
