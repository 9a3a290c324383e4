package photostore

import "errors"

var (
	// ErrNotFound is returned when no photo exists under the key.
	ErrNotFound = errors.New("photo not found")
	// ErrInvalidKey is returned for keys that escape the photo prefix.
	ErrInvalidKey = errors.New("invalid photo key")
	// ErrEmptyPhoto is returned when no bytes were provided.
	ErrEmptyPhoto = errors.New("photo is empty")
	// ErrStorageFailure wraps backend errors.
	ErrStorageFailure = errors.New("photo storage failure")
)
