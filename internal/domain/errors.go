package domain

import "errors"

// Sentinel errors shared across the core. Services and repositories wrap
// these with fmt.Errorf("...: %w", ...) so callers can match with errors.Is.
var (
	// ErrNotFound indicates a referenced profile or conference key is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a required field is missing or malformed.
	ErrValidation = errors.New("invalid input")

	// ErrCapacity indicates a seat-capacity rule was violated: shrinking
	// maxAttendees below the booked count, booking beyond the available
	// seats, or releasing beyond the capacity.
	ErrCapacity = errors.New("capacity violation")

	// ErrIdentityResolution indicates the fallback identity write or its
	// consistency-bypassing re-read failed. No partial identity is ever
	// surfaced alongside this error.
	ErrIdentityResolution = errors.New("identity resolution failed")
)
