package wordlist

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/spelling"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dictionary file extensions, in order of preference
var extensions = []string{".dic", ".txt"}

// Config holds engine settings
type Config struct {
	// SearchPath is where SetDictionary looks for dictionary files
	SearchPath string

	// MaxCorrections caps the number of candidates returned per word
	MaxCorrections int

	// MaxDistance is the largest edit distance a candidate may have
	MaxDistance int
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		SearchPath:     ".",
		MaxCorrections: 10,
		MaxDistance:    2,
	}
}

// Engine is a word-list spell engine. It performs no locking of its own:
// read methods may run concurrently with each other, and mutating methods
// must be serialized against everything else by the caller.
type Engine struct {
	config Config
	logger *slog.Logger

	words    *wordSet
	language string

	// session words survive dictionary swaps
	session map[string]string
}

var _ spelling.Engine = (*Engine)(nil)

// New creates an engine with no dictionary loaded
func New(config Config, logger *slog.Logger) *Engine {
	defaults := DefaultConfig()
	if config.SearchPath == "" {
		config.SearchPath = defaults.SearchPath
	}
	if config.MaxCorrections <= 0 {
		config.MaxCorrections = defaults.MaxCorrections
	}
	if config.MaxDistance <= 0 {
		config.MaxDistance = defaults.MaxDistance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		config:  config,
		logger:  logger.With("component", "wordlist_engine"),
		session: make(map[string]string),
	}
}

// Language returns the tag of the loaded dictionary, or "" when contents were
// loaded directly or nothing is loaded.
func (e *Engine) Language() string {
	return e.language
}

// WordCount returns the number of words in the loaded dictionary
func (e *Engine) WordCount() int {
	return e.words.len()
}

// SetDictionary loads the dictionary file named lang from the search path.
// A file matches when its name or identifier equals lang exactly, which
// covers names such as de_DE_frami that are not language tags. Otherwise lang
// is parsed as a language tag and matched against the tagged files with at
// least high confidence, so "en" selects en_US.dic when no plainer English
// list exists.
func (e *Engine) SetDictionary(lang string) bool {
	files := scanDictionaries(e.config.SearchPath)
	if len(files) == 0 {
		e.logger.Warn("no dictionaries found", "search_path", e.config.SearchPath)
		e.clear()
		return false
	}

	file, ok := resolveDictionary(files, lang)
	if !ok {
		e.logger.Warn("no dictionary matches language",
			"language", lang,
			"search_path", e.config.SearchPath)
		e.clear()
		return false
	}

	data, err := os.ReadFile(file.path)
	if err != nil {
		e.logger.Error("failed to read dictionary", "path", file.path, "error", err)
		e.clear()
		return false
	}

	words, ok := parseWords(data)
	if !ok {
		e.logger.Warn("dictionary holds no words", "path", file.path)
		e.clear()
		return false
	}

	e.words = words
	e.language = file.name
	e.logger.Info("dictionary loaded",
		"language", e.language,
		"path", file.path,
		"words", words.len())
	return true
}

// SetDictionaryFromContents loads a word list from data. The words are copied
// out, so data is not referenced after the call returns.
func (e *Engine) SetDictionaryFromContents(data []byte) bool {
	words, ok := parseWords(data)
	if !ok {
		e.logger.Warn("dictionary contents hold no words", "size", len(data))
		e.clear()
		return false
	}
	e.words = words
	e.language = ""
	e.logger.Info("dictionary loaded from contents", "words", words.len())
	return true
}

func (e *Engine) clear() {
	e.words = nil
	e.language = ""
}

// known reports whether folded is in the dictionary or the session list
func (e *Engine) known(folded string) bool {
	if _, ok := e.session[folded]; ok {
		return true
	}
	return e.words.contains(folded)
}

// CheckSpelling returns the ranges of words that are not known
func (e *Engine) CheckSpelling(text []uint16) []domain.MisspelledRange {
	fold := cases.Fold()

	var misspelled []token
	for _, tok := range tokenize(text) {
		if !e.known(fold.String(normalizeApostrophes(tok.word))) {
			misspelled = append(misspelled, tok)
		}
	}
	return toRanges(misspelled)
}

// IsMisspelled reports whether word is unknown
func (e *Engine) IsMisspelled(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	return !e.known(cases.Fold().String(normalizeApostrophes(word)))
}

// GetCorrectionsForMisspelling ranks known words by similarity to word
func (e *Engine) GetCorrectionsForMisspelling(word string) []string {
	word = strings.TrimSpace(word)
	if word == "" {
		return []string{}
	}
	folded := cases.Fold().String(normalizeApostrophes(word))
	wordLen := utf8.RuneCountInString(folded)

	type candidate struct {
		word     string
		distance int
		prefix   int
		rank     int
	}

	var candidates []candidate
	consider := func(w, f string, rank int) {
		if f == folded {
			return
		}
		if abs(utf8.RuneCountInString(f)-wordLen) > e.config.MaxDistance {
			return
		}
		d := levenshtein.ComputeDistance(folded, f)
		if d > e.config.MaxDistance {
			return
		}
		candidates = append(candidates, candidate{
			word:     w,
			distance: d,
			prefix:   sharedPrefix(folded, f),
			rank:     rank,
		})
	}

	if e.words != nil {
		for _, en := range e.words.entries {
			consider(en.word, en.folded, en.rank)
		}
	}
	base := e.words.len()
	for f, w := range e.session {
		if e.words.contains(f) {
			continue
		}
		// session words rank after the list; ties break alphabetically below
		consider(w, f, base)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.prefix != b.prefix {
			return a.prefix > b.prefix
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.word < b.word
	})

	if len(candidates) > e.config.MaxCorrections {
		candidates = candidates[:e.config.MaxCorrections]
	}

	capitalize := startsUpper(word)
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.word
		if capitalize {
			out[i] = upperFirst(c.word)
		}
	}
	return out
}

// Add adds word to the session list
func (e *Engine) Add(word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	e.session[cases.Fold().String(normalizeApostrophes(word))] = word
}

// Remove removes word from the session list. Words from the loaded
// dictionary are unaffected.
func (e *Engine) Remove(word string) {
	delete(e.session, cases.Fold().String(normalizeApostrophes(strings.TrimSpace(word))))
}

// GetAvailableDictionaries lists the names of the dictionary files in path,
// sorted and without duplicates. Each name is accepted by SetDictionary.
func (e *Engine) GetAvailableDictionaries(path string) []string {
	files := scanDictionaries(path)
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.name]; ok {
			continue
		}
		seen[f.name] = struct{}{}
		out = append(out, f.name)
	}
	sort.Strings(out)
	return out
}

// dictionaryFile is one dictionary found on disk. name is the canonical
// language tag when the file stem parses as one, and the stem otherwise.
type dictionaryFile struct {
	name   string
	stem   string
	tag    language.Tag
	tagged bool
	path   string
}

// scanDictionaries finds dictionary files in dir, ordered by name with .dic
// files preferred over .txt for the same name
func scanDictionaries(dir string) []dictionaryFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	byName := make(map[string]dictionaryFile)
	priority := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		ext := filepath.Ext(fileName)
		p := extensionPriority(strings.ToLower(ext))
		if p < 0 {
			continue
		}
		stem := strings.TrimSuffix(fileName, ext)
		if stem == "" {
			continue
		}

		f := dictionaryFile{name: stem, stem: stem, path: filepath.Join(dir, fileName)}
		if tag, err := language.Parse(stem); err == nil {
			f.name = tag.String()
			f.tag = tag
			f.tagged = true
		}
		if existing, ok := priority[f.name]; ok && existing <= p {
			continue
		}
		priority[f.name] = p
		byName[f.name] = f
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	files := make([]dictionaryFile, len(names))
	for i, name := range names {
		files[i] = byName[name]
	}
	return files
}

// resolveDictionary picks the file for name: an exact stem or identifier
// match first, then the closest language match among tagged files.
func resolveDictionary(files []dictionaryFile, name string) (dictionaryFile, bool) {
	for _, f := range files {
		if f.stem == name || f.name == name {
			return f, true
		}
	}

	requested, err := language.Parse(name)
	if err != nil {
		return dictionaryFile{}, false
	}
	var tags []language.Tag
	var tagged []dictionaryFile
	for _, f := range files {
		if f.tagged {
			tags = append(tags, f.tag)
			tagged = append(tagged, f)
		}
	}
	if len(tags) == 0 {
		return dictionaryFile{}, false
	}
	_, index, confidence := language.NewMatcher(tags).Match(requested)
	if confidence < language.High {
		return dictionaryFile{}, false
	}
	return tagged[index], true
}

func extensionPriority(ext string) int {
	for i, e := range extensions {
		if ext == e {
			return i
		}
	}
	return -1
}

func normalizeApostrophes(s string) string {
	return strings.ReplaceAll(s, "’", "'")
}

func sharedPrefix(a, b string) int {
	n := 0
	for a != "" && b != "" {
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if ra != rb {
			break
		}
		n++
		a, b = a[sa:], b[sb:]
	}
	return n
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
