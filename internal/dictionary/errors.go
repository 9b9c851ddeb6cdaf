package dictionary

import "errors"

var (
	// ErrHandleClosed is returned when the handle is used after Close.
	ErrHandleClosed = errors.New("dictionary handle is closed")

	// ErrNilEngine is returned when a handle is created without an engine.
	ErrNilEngine = errors.New("spell engine cannot be nil")
)
