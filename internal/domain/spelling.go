package domain

import "fmt"

// MisspelledRange is a contiguous span of code units, by offset, that the
// dictionary does not recognize. Offsets are UTF-16 code units into the text
// the range was computed for: Start is inclusive, End is exclusive.
type MisspelledRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of code units covered by the range.
func (r MisspelledRange) Len() int {
	return r.End - r.Start
}

// Validate checks that the range fits in a text of textLen code units.
func (r MisspelledRange) Validate(textLen int) error {
	if r.Start < 0 || r.Start > r.End || r.End > textLen {
		return fmt.Errorf("%w: {%d,%d} in text of length %d",
			ErrRangeOutOfBounds, r.Start, r.End, textLen)
	}
	return nil
}

// ValidateRanges checks every range against textLen and verifies that the
// ranges are sorted ascending by start and do not overlap. Bounds are checked
// for every range before ordering, so an ErrRangesUnordered result means all
// ranges fit the text.
func ValidateRanges(ranges []MisspelledRange, textLen int) error {
	for i, r := range ranges {
		if err := r.Validate(textLen); err != nil {
			return fmt.Errorf("range %d: %w", i, err)
		}
	}

	prevEnd := 0
	for i, r := range ranges {
		if i > 0 && r.Start < prevEnd {
			return fmt.Errorf("%w: range %d starts at %d before previous end %d",
				ErrRangesUnordered, i, r.Start, prevEnd)
		}
		prevEnd = r.End
	}
	return nil
}

// ValidateCorrections checks that no correction is empty.
// Order is engine-assigned relevance and is not inspected.
func ValidateCorrections(corrections []string) error {
	for i, c := range corrections {
		if c == "" {
			return fmt.Errorf("correction %d: %w", i, ErrEmptyCorrection)
		}
	}
	return nil
}
