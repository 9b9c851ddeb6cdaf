package task

import (
	"log/slog"

	"github.com/phrazzld/spellcheck/internal/textbuf"
)

// Factory creates spelling tasks bound to one dictionary
type Factory struct {
	dict   DictionaryReader
	logger *slog.Logger
}

// NewFactory creates a new factory for spelling tasks
func NewFactory(dict DictionaryReader, logger *slog.Logger) *Factory {
	return &Factory{
		dict:   dict,
		logger: logger.With("component", "task_factory"),
	}
}

// NewCheckSpelling creates a CheckSpellingTask for text
func (f *Factory) NewCheckSpelling(text textbuf.Buffer) (*CheckSpellingTask, error) {
	return NewCheckSpellingTask(text, f.dict, f.logger)
}

// NewCorrections creates a CorrectionsTask for word
func (f *Factory) NewCorrections(word string) (*CorrectionsTask, error) {
	return NewCorrectionsTask(word, f.dict, f.logger)
}
