package services

import "errors"

// Service errors are wrapped with context at the call site and mapped
// to HTTP statuses at the controller boundary with errors.Is.
var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the acting user does not own the entity the
	// operation requires them to own.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means a relationship already exists for the character
	// pair, in either order.
	ErrConflict = errors.New("already exists")

	// ErrInvalidState means the action is not valid for the entity's
	// current lifecycle state, e.g. approving a non-pending relationship.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")
)
