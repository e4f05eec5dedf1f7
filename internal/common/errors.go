// Package common defines shared sentinel errors used across skillkeeper
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrUserIDNotResolved signals that a numeric user id required for a
	// dependent write could not be resolved. This is a data-integrity
	// violation; the surrounding save or load must be aborted.
	ErrUserIDNotResolved = errors.New("user id not resolved")

	// Validation errors.
	ErrInvalidID = errors.New("invalid namespaced id")
)
