// Package errs holds the error kinds shared across the service. Callers wrap them with
// fmt.Errorf("...: %w", ...) and match with errors.Is.
package errs

import "errors"

var (
	// ErrConflict duplicate subscription
	ErrConflict = errors.New("conflict")
	// ErrNotFound unknown instrument, or the provider has no quote for it
	ErrNotFound = errors.New("not found")
	// ErrTransport upstream provider call failed
	ErrTransport = errors.New("transport error")
	// ErrValidation malformed input
	ErrValidation = errors.New("validation error")
)
