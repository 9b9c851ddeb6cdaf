// Package domain defines the core value types and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a value fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrRangeOutOfBounds is returned when a misspelled range does not fit
	// inside the text it was computed for.
	ErrRangeOutOfBounds = errors.New("misspelled range out of bounds")

	// ErrRangesUnordered is returned when misspelled ranges are not sorted by
	// start offset or overlap each other.
	ErrRangesUnordered = errors.New("misspelled ranges unordered or overlapping")

	// ErrEmptyCorrection is returned when a correction list contains an empty string.
	ErrEmptyCorrection = errors.New("correction cannot be empty")
)
