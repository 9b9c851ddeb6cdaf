package spelling

import "errors"

// Common errors returned by the spelling boundary
var (
	// ErrNoDictionary is returned when a check is requested before any
	// dictionary has been loaded
	ErrNoDictionary = errors.New("no dictionary loaded")

	// ErrLoadFailed is returned when an engine rejects a language tag or
	// dictionary contents
	ErrLoadFailed = errors.New("failed to load dictionary")

	// ErrContractViolation is returned when an engine produces results that
	// break its contract, such as ranges outside the checked text
	ErrContractViolation = errors.New("spell engine contract violation")
)
