package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("entity already exists")

	// ErrVersionMismatch is returned when an optimistic-lock guarded update
	// finds the row at a different version than expected.
	ErrVersionMismatch = errors.New("version mismatch")
)
