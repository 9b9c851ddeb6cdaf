package textbuf

import (
	"unicode/utf16"

	"github.com/phrazzld/spellcheck/internal/domain"
)

// Buffer is an owned, read-only sequence of UTF-16 code units.
// The zero value is an empty buffer.
type Buffer struct {
	units []uint16
}

// New encodes s into a freshly allocated UTF-16 buffer.
func New(s string) Buffer {
	if s == "" {
		return Buffer{}
	}
	return Buffer{units: utf16.Encode([]rune(s))}
}

// FromUnits deep-copies units supplied by a host that already holds UTF-16 text.
func FromUnits(units []uint16) Buffer {
	if len(units) == 0 {
		return Buffer{}
	}
	owned := make([]uint16, len(units))
	copy(owned, units)
	return Buffer{units: owned}
}

// Len returns the number of code units in the buffer.
func (b Buffer) Len() int {
	return len(b.units)
}

// IsEmpty reports whether the buffer holds no code units.
func (b Buffer) IsEmpty() bool {
	return len(b.units) == 0
}

// Units returns a copy of the code units.
func (b Buffer) Units() []uint16 {
	out := make([]uint16, len(b.units))
	copy(out, b.units)
	return out
}

// View returns the code units without copying. Callers must not modify the
// returned slice; it exists so engines can read the text without an extra
// allocation per check.
func (b Buffer) View() []uint16 {
	return b.units
}

// String decodes the buffer back to a Go string.
func (b Buffer) String() string {
	return string(utf16.Decode(b.units))
}

// Slice returns the text covered by r. Ranges outside the buffer are clamped.
func (b Buffer) Slice(r domain.MisspelledRange) string {
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > len(b.units) {
		end = len(b.units)
	}
	if start >= end {
		return ""
	}
	return string(utf16.Decode(b.units[start:end]))
}
