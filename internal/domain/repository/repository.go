package repository

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write collides with a unique or
	// referential constraint.
	ErrConflict = errors.New("record conflicts with existing data")
)
