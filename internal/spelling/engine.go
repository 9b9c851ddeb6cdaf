package spelling

import "github.com/phrazzld/spellcheck/internal/domain"

// Engine is the capability set the core expects from a spell engine.
//
// Read methods (CheckSpelling, GetCorrectionsForMisspelling, IsMisspelled,
// GetAvailableDictionaries) may be called concurrently with each other.
// Mutating methods (SetDictionary, SetDictionaryFromContents, Add, Remove) are
// never called concurrently with anything else; the dictionary handle
// guarantees that exclusion, so engines do not need their own locking.
type Engine interface {
	// SetDictionary loads the dictionary named by language, exactly as the
	// host passed it. It returns false when the language cannot be loaded.
	SetDictionary(language string) bool

	// SetDictionaryFromContents loads a dictionary from raw contents. The
	// engine may keep referencing data until the next Set call; the caller
	// guarantees data stays alive and unmodified until then.
	SetDictionaryFromContents(data []byte) bool

	// CheckSpelling returns the misspelled ranges of text, in UTF-16 code
	// unit offsets, sorted by start and non-overlapping.
	CheckSpelling(text []uint16) []domain.MisspelledRange

	// GetCorrectionsForMisspelling returns candidate corrections ordered by
	// relevance, most relevant first.
	GetCorrectionsForMisspelling(word string) []string

	// IsMisspelled reports whether a single word is not recognized.
	IsMisspelled(word string) bool

	// Add adds word to the session word list.
	Add(word string)

	// Remove removes word from the session word list.
	Remove(word string)

	// GetAvailableDictionaries lists the dictionary identifiers found at path.
	GetAvailableDictionaries(path string) []string
}
