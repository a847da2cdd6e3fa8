// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid")

	// ErrQuotaExceeded means a snapshot could not be written because the
	// backing storage is full. In-memory state is unaffected.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrMalformedSnapshot marks a snapshot that was only partially readable.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
