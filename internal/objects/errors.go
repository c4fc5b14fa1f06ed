package objects

import "errors"

var (
	// ErrConfiguration means no bucket or target directory could be determined.
	ErrConfiguration = errors.New("object storage is not configured")
	// ErrNotFound means no candidate directory holds the object.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidPath means the reference is not a canonical /objects/... path.
	ErrInvalidPath = errors.New("invalid object path")
	// ErrInvalidInput covers rejected uploads (empty body, disallowed type, bad visibility).
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when read ACL enforcement denies access.
	ErrForbidden = errors.New("forbidden")
)
