package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/platform/logger"
	"github.com/phrazzld/spellcheck/internal/spelling"
	"github.com/phrazzld/spellcheck/internal/textbuf"
)

// Common errors
var (
	ErrNilDictionary = errors.New("dictionary cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
)

// DictionaryReader grants shared access to a loaded spell engine. It returns
// spelling.ErrNoDictionary without calling fn when no dictionary is loaded.
type DictionaryReader interface {
	Read(fn func(engine spelling.Engine) error) error
}

// CheckSpellingTask finds the misspelled ranges of one text buffer
type CheckSpellingTask struct {
	lifecycle

	id      uuid.UUID
	text    textbuf.Buffer
	textLen int
	dict    DictionaryReader
	logger  *slog.Logger

	// written by Execute, read after completion is delivered
	ranges []domain.MisspelledRange
}

// NewCheckSpellingTask creates a task that owns text until it finishes
func NewCheckSpellingTask(
	text textbuf.Buffer,
	dict DictionaryReader,
	logger *slog.Logger,
) (*CheckSpellingTask, error) {
	if dict == nil {
		return nil, ErrNilDictionary
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	id := uuid.New()
	return &CheckSpellingTask{
		lifecycle: newLifecycle(),
		id:        id,
		text:      text,
		textLen:   text.Len(),
		dict:      dict,
		logger: logger.With(
			"task_type", TaskTypeCheckSpelling,
			"task_id", id,
			"text_length", text.Len()),
	}, nil
}

// ID returns the task's unique identifier
func (t *CheckSpellingTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CheckSpellingTask) Type() string {
	return TaskTypeCheckSpelling
}

// TextLen returns the length of the checked text in code units
func (t *CheckSpellingTask) TextLen() int {
	return t.textLen
}

// Execute checks the buffer under a shared dictionary lease. Ranges that fall
// outside the buffer fail the task; anything else the engine returns is
// delivered verbatim. The buffer is released when Execute returns.
func (t *CheckSpellingTask) Execute(ctx context.Context) (err error) {
	if !t.transition(TaskStatusRunning) {
		return fmt.Errorf("cannot execute task in status %s", t.Status())
	}
	textLen := t.textLen
	defer func() {
		t.text = textbuf.Buffer{}
		if r := recover(); r != nil {
			t.transition(TaskStatusFailed)
			panic(r)
		}
		if err != nil {
			t.transition(TaskStatusFailed)
			return
		}
		t.transition(TaskStatusCompleted)
	}()

	log := logger.FromContextOrDefault(ctx, t.logger)
	log.Debug("checking spelling")

	var ranges []domain.MisspelledRange
	err = t.dict.Read(func(engine spelling.Engine) error {
		found := engine.CheckSpelling(t.text.View())
		if verr := domain.ValidateRanges(found, textLen); verr != nil {
			if !errors.Is(verr, domain.ErrRangesUnordered) {
				return fmt.Errorf("%w: %w", spelling.ErrContractViolation, verr)
			}
			// ordering belongs to the engine; pass the ranges on as given
			log.Warn("engine returned unordered ranges", "error", verr)
		}
		ranges = make([]domain.MisspelledRange, len(found))
		copy(ranges, found)
		return nil
	})
	if err != nil {
		log.Debug("spelling check failed", "error", err)
		return err
	}

	t.ranges = ranges
	log.Debug("spelling check finished", "misspelled", len(ranges))
	return nil
}

// Result returns the misspelled ranges found by a completed task, in the order
// the engine reported them. It is never nil.
func (t *CheckSpellingTask) Result() []domain.MisspelledRange {
	if t.ranges == nil {
		return []domain.MisspelledRange{}
	}
	return t.ranges
}
