package content

import "errors"

var (
	ErrNotFound     = errors.New("content not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("object owned by another user")
)
