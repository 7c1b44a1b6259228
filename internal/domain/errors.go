package domain

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned by services when a record exists but
	// belongs to a different owner.
	ErrForbidden = errors.New("forbidden")
)
