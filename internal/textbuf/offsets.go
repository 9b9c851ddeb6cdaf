package textbuf

import (
	"unicode/utf16"

	"github.com/phrazzld/spellcheck/internal/domain"
)

// ByteRange maps r, given in UTF-16 code units of s, to byte offsets into s
// so that s[start:end] is the covered text. ok is false when r is inverted,
// falls outside s or splits a surrogate pair. Invalid UTF-8 bytes count as
// one unit each, as they do in New.
func ByteRange(s string, r domain.MisspelledRange) (start, end int, ok bool) {
	if r.Start < 0 || r.End < r.Start {
		return 0, 0, false
	}

	start, end = -1, -1
	unit := 0
	for i, c := range s {
		if unit == r.Start {
			start = i
		}
		if unit == r.End {
			end = i
			break
		}
		n := utf16.RuneLen(c)
		if n < 0 {
			n = 1
		}
		unit += n
	}
	if unit == r.Start && start < 0 {
		start = len(s)
	}
	if unit == r.End && end < 0 {
		end = len(s)
	}
	if start < 0 || end < 0 {
		return 0, 0, false
	}
	return start, end, true
}
