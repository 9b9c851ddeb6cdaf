package wordlist

import (
	"unicode"
	"unicode/utf16"

	"github.com/phrazzld/spellcheck/internal/domain"
)

// token is a word found in UTF-16 text
type token struct {
	word  string
	start int
	end   int
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r)
}

// tokenize splits text into words made of letters, combining marks and inner
// apostrophes. Offsets are in code units. Words containing digits are skipped.
func tokenize(text []uint16) []token {
	var tokens []token

	start := -1
	hasDigit := false
	runes := make([]rune, 0, 32)

	flush := func(end int) {
		if start < 0 {
			return
		}
		// trailing apostrophes belong to the surrounding text
		for len(runes) > 0 && isApostrophe(runes[len(runes)-1]) {
			runes = runes[:len(runes)-1]
			end--
		}
		if len(runes) > 0 && !hasDigit {
			tokens = append(tokens, token{word: string(runes), start: start, end: end})
		}
		start = -1
		hasDigit = false
		runes = runes[:0]
	}

	for i := 0; i < len(text); {
		r, width := decodeAt(text, i)
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
			runes = append(runes, r)
		case unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
			hasDigit = true
			runes = append(runes, r)
		case isApostrophe(r) && start >= 0:
			runes = append(runes, r)
		default:
			flush(i)
		}
		i += width
	}
	flush(len(text))
	return tokens
}

// decodeAt decodes the rune starting at text[i] and returns its width in code
// units. Unpaired surrogates decode as U+FFFD with width 1.
func decodeAt(text []uint16, i int) (rune, int) {
	u := rune(text[i])
	if utf16.IsSurrogate(u) && i+1 < len(text) {
		if r := utf16.DecodeRune(u, rune(text[i+1])); r != unicode.ReplacementChar {
			return r, 2
		}
	}
	if utf16.IsSurrogate(u) {
		return unicode.ReplacementChar, 1
	}
	return u, 1
}

func toRanges(tokens []token) []domain.MisspelledRange {
	ranges := make([]domain.MisspelledRange, len(tokens))
	for i, t := range tokens {
		ranges[i] = domain.MisspelledRange{Start: t.start, End: t.end}
	}
	return ranges
}
