package content

import "time"

// Record is the persisted row for an uploaded object a user has attached to
// their content.
type Record struct {
	ID          string
	OwnerID     string
	ObjectPath  string
	StoragePath string
	FileName    string
	ContentType string
	SizeBytes   int64
	Visibility  string
	Title       string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}
