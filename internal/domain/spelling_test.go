package domain

import (
	"errors"
	"testing"
)

func TestMisspelledRange_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r       MisspelledRange
		textLen int
		wantErr bool
	}{
		{"whole text", MisspelledRange{0, 4}, 4, false},
		{"empty range", MisspelledRange{2, 2}, 4, false},
		{"empty text empty range", MisspelledRange{0, 0}, 0, false},
		{"negative start", MisspelledRange{-1, 2}, 4, true},
		{"start after end", MisspelledRange{3, 2}, 4, true},
		{"end past text", MisspelledRange{0, 5}, 4, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.r.Validate(tc.textLen)
			if tc.wantErr {
				if !errors.Is(err, ErrRangeOutOfBounds) {
					t.Errorf("Expected ErrRangeOutOfBounds, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestMisspelledRange_Len(t *testing.T) {
	t.Parallel()
	if got := (MisspelledRange{Start: 5, End: 9}).Len(); got != 4 {
		t.Errorf("Expected length 4, got %d", got)
	}
}

func TestValidateRanges(t *testing.T) {
	t.Parallel()

	if err := ValidateRanges(nil, 0); err != nil {
		t.Errorf("Expected no error for nil ranges, got %v", err)
	}

	ok := []MisspelledRange{{0, 4}, {5, 9}}
	if err := ValidateRanges(ok, 9); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	adjacent := []MisspelledRange{{0, 4}, {4, 6}}
	if err := ValidateRanges(adjacent, 6); err != nil {
		t.Errorf("Expected adjacent ranges to be accepted, got %v", err)
	}

	overlapping := []MisspelledRange{{0, 4}, {3, 6}}
	if err := ValidateRanges(overlapping, 6); !errors.Is(err, ErrRangesUnordered) {
		t.Errorf("Expected ErrRangesUnordered, got %v", err)
	}

	unsorted := []MisspelledRange{{5, 9}, {0, 4}}
	if err := ValidateRanges(unsorted, 9); !errors.Is(err, ErrRangesUnordered) {
		t.Errorf("Expected ErrRangesUnordered, got %v", err)
	}

	outOfBounds := []MisspelledRange{{0, 4}, {5, 10}}
	if err := ValidateRanges(outOfBounds, 9); !errors.Is(err, ErrRangeOutOfBounds) {
		t.Errorf("Expected ErrRangeOutOfBounds, got %v", err)
	}
}

func TestValidateCorrections(t *testing.T) {
	t.Parallel()

	if err := ValidateCorrections([]string{"hello", "help"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := ValidateCorrections([]string{"hello", ""}); !errors.Is(err, ErrEmptyCorrection) {
		t.Errorf("Expected ErrEmptyCorrection, got %v", err)
	}
}
