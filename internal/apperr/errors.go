// Package apperr defines the error taxonomy shared by the authorization
// core. Callers branch on these sentinels with errors.Is; anything else is
// treated as an internal failure.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrValidation        = errors.New("validation failed")
)
