// Package apperr holds the sentinel errors shared across layers.
// Handlers map them to HTTP statuses with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized means the supplied comment password did not match.
	ErrUnauthorized = errors.New("incorrect password")
	// ErrInvalidParent means a reply referenced a comment outside its thread.
	ErrInvalidParent = errors.New("parent comment not found")
	ErrInvalidSlug   = errors.New("invalid slug")
)
