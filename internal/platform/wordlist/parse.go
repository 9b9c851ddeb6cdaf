package wordlist

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// entry is one known word with its rank in the source list
type entry struct {
	word   string
	folded string
	rank   int
}

// wordSet is an immutable parsed dictionary
type wordSet struct {
	entries []entry
	index   map[string]int
}

func (s *wordSet) contains(folded string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[folded]
	return ok
}

func (s *wordSet) len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// parseWords reads a word list. It returns false when data holds no words.
func parseWords(data []byte) (*wordSet, bool) {
	fold := cases.Fold()
	set := &wordSet{index: make(map[string]int)}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			line = strings.TrimPrefix(line, "\ufeff")
			// hunspell .dic files start with an approximate entry count
			if _, err := strconv.Atoi(line); err == nil {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexAny(line, "/\t "); i >= 0 {
			line = line[:i]
		}
		if line == "" {
			continue
		}

		folded := fold.String(line)
		if _, seen := set.index[folded]; seen {
			continue
		}
		set.index[folded] = len(set.entries)
		set.entries = append(set.entries, entry{word: line, folded: folded, rank: len(set.entries)})
	}
	if scanner.Err() != nil || len(set.entries) == 0 {
		return nil, false
	}
	return set, true
}
