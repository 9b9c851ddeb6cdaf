package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/platform/logger"
	"github.com/phrazzld/spellcheck/internal/spelling"
)

// CorrectionsTask looks up replacement candidates for one misspelled word
type CorrectionsTask struct {
	lifecycle

	id     uuid.UUID
	word   string
	dict   DictionaryReader
	logger *slog.Logger

	corrections []string
}

// NewCorrectionsTask creates a task for word
func NewCorrectionsTask(word string, dict DictionaryReader, logger *slog.Logger) (*CorrectionsTask, error) {
	if dict == nil {
		return nil, ErrNilDictionary
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	id := uuid.New()
	return &CorrectionsTask{
		lifecycle: newLifecycle(),
		id:        id,
		word:      word,
		dict:      dict,
		logger:    logger.With("task_type", TaskTypeGetCorrections, "task_id", id),
	}, nil
}

// ID returns the task's unique identifier
func (t *CorrectionsTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CorrectionsTask) Type() string {
	return TaskTypeGetCorrections
}

// Word returns the word corrections are looked up for
func (t *CorrectionsTask) Word() string {
	return t.word
}

// Execute asks the engine for candidates under a shared dictionary lease.
func (t *CorrectionsTask) Execute(ctx context.Context) (err error) {
	if !t.transition(TaskStatusRunning) {
		return fmt.Errorf("cannot execute task in status %s", t.Status())
	}
	defer func() {
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

	var corrections []string
	err = t.dict.Read(func(engine spelling.Engine) error {
		found := engine.GetCorrectionsForMisspelling(t.word)
		if verr := domain.ValidateCorrections(found); verr != nil {
			return fmt.Errorf("%w: %w", spelling.ErrContractViolation, verr)
		}
		corrections = make([]string, len(found))
		copy(corrections, found)
		return nil
	})
	if err != nil {
		log.Debug("correction lookup failed", "error", err)
		return err
	}

	t.corrections = corrections
	log.Debug("correction lookup finished", "candidates", len(corrections))
	return nil
}

// Result returns the candidates in engine order, most relevant first.
// It is never nil.
func (t *CorrectionsTask) Result() []string {
	if t.corrections == nil {
		return []string{}
	}
	return t.corrections
}
