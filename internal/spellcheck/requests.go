package spellcheck

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/spellcheck/internal/domain"
)

// CheckCallback receives the misspelled ranges of a CheckSpelling request.
// ranges is non-nil when err is nil.
type CheckCallback func(ranges []domain.MisspelledRange, err error)

// CorrectionsCallback receives the candidates of a correction request, most
// relevant first. corrections is non-nil when err is nil.
type CorrectionsCallback func(corrections []string, err error)

type checkRequest struct {
	Callback CheckCallback `validate:"required"`
}

type correctionsRequest struct {
	Callback CorrectionsCallback `validate:"required"`
}

type wordRequest struct {
	Word string `validate:"required"`
}

type languageRequest struct {
	Language string `validate:"required"`
}

type contentsRequest struct {
	Data []byte `validate:"required,min=1"`
}

// requestValidator checks request structs and maps failures onto
// ErrInvalidArgument
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) check(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidArgument, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}
