package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks caller-side validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
