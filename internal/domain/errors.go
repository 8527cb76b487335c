package domain

import "errors"

// Error taxonomy shared by the store, scheduler and delivery adapter.
// Callers classify failures with errors.Is.
var (
	// ErrValidation marks bad contact input. Surfaced to the user, non-fatal.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an out-of-range contact index. Surfaced, non-fatal.
	ErrNotFound = errors.New("contact not found")

	// ErrTransient marks a generation or delivery failure that is retried
	// on the next scheduler tick.
	ErrTransient = errors.New("transient error")

	// ErrFatal marks a persistent delivery failure. The contact is disabled
	// and the user notified.
	ErrFatal = errors.New("fatal error")
)
