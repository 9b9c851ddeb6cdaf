package spellcheck

import (
	"errors"
	"fmt"

	"github.com/phrazzld/spellcheck/internal/domain"
)

var (
	// ErrInvalidArgument is returned synchronously for malformed requests,
	// such as a nil callback or an empty word. Nothing is dispatched.
	ErrInvalidArgument = fmt.Errorf("invalid argument: %w", domain.ErrValidation)

	// ErrClosed is returned for any call made after Close has begun.
	ErrClosed = errors.New("spellchecker is closed")
)
