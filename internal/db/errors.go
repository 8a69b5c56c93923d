package db

import "errors"

var (
	// ErrNotFound is returned when no document matches the operation.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a unique index rejects a write.
	ErrConflict = errors.New("duplicate key")
)
