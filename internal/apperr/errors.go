// Package apperr defines the sentinel errors shared across Ansuz layers.
//
// Callers wrap these with fmt.Errorf("...: %w", ...) so the offending key
// stays in the message while errors.Is keeps working at the API and CLI
// boundaries.
package apperr

import "errors"

var (
	// ErrValidation marks malformed or invariant-violating configuration
	// data: bad profile names, duplicate names or usage ids, a default
	// profile that points nowhere.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup miss by a caller-supplied key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation marks a structurally valid request that violates
	// store policy, such as deleting the current default profile.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrDuplicate marks a registry insertion that collides with a usage id
	// already known to either the in-memory or the disk layer.
	ErrDuplicate = errors.New("duplicate usage id")
)
