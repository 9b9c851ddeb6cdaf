package task

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/platform/logger"
	"github.com/phrazzld/spellcheck/internal/spelling"
	"github.com/phrazzld/spellcheck/internal/textbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine returns canned results for read calls
type fakeEngine struct {
	ranges      []domain.MisspelledRange
	corrections []string
	lastText    []uint16
	lastWord    string
	panicOn     bool
}

func (f *fakeEngine) SetDictionary(string) bool             { return true }
func (f *fakeEngine) SetDictionaryFromContents([]byte) bool { return true }
func (f *fakeEngine) IsMisspelled(string) bool              { return false }
func (f *fakeEngine) Add(string)                            {}
func (f *fakeEngine) Remove(string)                         {}
func (f *fakeEngine) GetAvailableDictionaries(string) []string {
	return nil
}

func (f *fakeEngine) CheckSpelling(text []uint16) []domain.MisspelledRange {
	if f.panicOn {
		panic("engine failure")
	}
	f.lastText = text
	return f.ranges
}

func (f *fakeEngine) GetCorrectionsForMisspelling(word string) []string {
	f.lastWord = word
	return f.corrections
}

// fakeDictionary hands out the engine, or ErrNoDictionary when empty
type fakeDictionary struct {
	engine spelling.Engine
	reads  int
}

func (d *fakeDictionary) Read(fn func(engine spelling.Engine) error) error {
	d.reads++
	if d.engine == nil {
		return spelling.ErrNoDictionary
	}
	return fn(d.engine)
}

func TestNewCheckSpellingTask_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewCheckSpellingTask(textbuf.New("x"), nil, setupTestLogger())
	assert.ErrorIs(t, err, ErrNilDictionary)

	_, err = NewCheckSpellingTask(textbuf.New("x"), &fakeDictionary{}, nil)
	assert.ErrorIs(t, err, ErrNilLogger)

	task, err := NewCheckSpellingTask(textbuf.New("hello"), &fakeDictionary{}, setupTestLogger())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeCheckSpelling, task.Type())
	assert.Equal(t, TaskStatusPending, task.Status())
	assert.Equal(t, 5, task.TextLen())
	assert.NotEqual(t, task.ID(), NewMockTask("x").ID())
}

func TestCheckSpellingTask_Execute(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{ranges: []domain.MisspelledRange{{Start: 0, End: 4}, {Start: 5, End: 9}}}
	dict := &fakeDictionary{engine: engine}
	task, err := NewCheckSpellingTask(textbuf.New("helo wrld"), dict, setupTestLogger())
	require.NoError(t, err)

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Equal(t, []domain.MisspelledRange{{Start: 0, End: 4}, {Start: 5, End: 9}}, task.Result())
	assert.Equal(t, textbuf.New("helo wrld").View(), engine.lastText)

	// The result is a copy of what the engine returned
	engine.ranges[0].Start = 3
	assert.Equal(t, 0, task.Result()[0].Start)

	// A task runs once
	assert.Error(t, task.Execute(context.Background()))
	assert.Equal(t, 1, dict.reads)
}

func TestCheckSpellingTask_NoMisspellings(t *testing.T) {
	t.Parallel()

	task, err := NewCheckSpellingTask(textbuf.New("hello"), &fakeDictionary{engine: &fakeEngine{}}, setupTestLogger())
	require.NoError(t, err)
	require.NoError(t, task.Execute(context.Background()))

	assert.NotNil(t, task.Result())
	assert.Empty(t, task.Result())
}

func TestCheckSpellingTask_NoDictionary(t *testing.T) {
	t.Parallel()

	task, err := NewCheckSpellingTask(textbuf.New("hello"), &fakeDictionary{}, setupTestLogger())
	require.NoError(t, err)

	err = task.Execute(context.Background())
	assert.ErrorIs(t, err, spelling.ErrNoDictionary)
	assert.Equal(t, TaskStatusFailed, task.Status())
	assert.NotNil(t, task.Result())
}

func TestCheckSpellingTask_ContractViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ranges []domain.MisspelledRange
	}{
		{"past end", []domain.MisspelledRange{{Start: 2, End: 9}}},
		{"inverted", []domain.MisspelledRange{{Start: 3, End: 1}}},
		{"unordered then past end", []domain.MisspelledRange{{Start: 3, End: 5}, {Start: 0, End: 2}, {Start: 4, End: 6}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dict := &fakeDictionary{engine: &fakeEngine{ranges: tc.ranges}}
			task, err := NewCheckSpellingTask(textbuf.New("hello"), dict, setupTestLogger())
			require.NoError(t, err)

			err = task.Execute(context.Background())
			assert.ErrorIs(t, err, spelling.ErrContractViolation)
			assert.ErrorIs(t, err, domain.ErrRangeOutOfBounds)
			assert.Equal(t, TaskStatusFailed, task.Status())
			assert.Empty(t, task.Result())
		})
	}
}

func TestCheckSpellingTask_DeliversEngineOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ranges []domain.MisspelledRange
	}{
		{"unordered", []domain.MisspelledRange{{Start: 3, End: 5}, {Start: 0, End: 2}}},
		{"overlapping", []domain.MisspelledRange{{Start: 0, End: 3}, {Start: 2, End: 5}}},
		{"duplicate", []domain.MisspelledRange{{Start: 1, End: 4}, {Start: 1, End: 4}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			ctx := logger.WithLogger(context.Background(), log)

			dict := &fakeDictionary{engine: &fakeEngine{ranges: tc.ranges}}
			task, err := NewCheckSpellingTask(textbuf.New("hello"), dict, setupTestLogger())
			require.NoError(t, err)

			require.NoError(t, task.Execute(ctx))
			assert.Equal(t, TaskStatusCompleted, task.Status())
			assert.Equal(t, tc.ranges, task.Result())
			assert.Contains(t, buf.String(), "engine returned unordered ranges")
			assert.Contains(t, buf.String(), "spelling check finished")
		})
	}
}

func TestCheckSpellingTask_PanicMarksFailed(t *testing.T) {
	t.Parallel()

	dict := &fakeDictionary{engine: &fakeEngine{panicOn: true}}
	task, err := NewCheckSpellingTask(textbuf.New("hello"), dict, setupTestLogger())
	require.NoError(t, err)

	assert.Panics(t, func() { _ = task.Execute(context.Background()) })
	assert.Equal(t, TaskStatusFailed, task.Status())
}

func TestCorrectionsTask_Execute(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{corrections: []string{"hello", "help", "hell"}}
	task, err := NewCorrectionsTask("helo", &fakeDictionary{engine: engine}, setupTestLogger())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeGetCorrections, task.Type())
	assert.Equal(t, "helo", task.Word())

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Equal(t, "helo", engine.lastWord)
	assert.Equal(t, []string{"hello", "help", "hell"}, task.Result())
}

func TestCorrectionsTask_Failures(t *testing.T) {
	t.Parallel()

	_, err := NewCorrectionsTask("x", nil, setupTestLogger())
	assert.ErrorIs(t, err, ErrNilDictionary)

	task, err := NewCorrectionsTask("helo", &fakeDictionary{}, setupTestLogger())
	require.NoError(t, err)
	assert.ErrorIs(t, task.Execute(context.Background()), spelling.ErrNoDictionary)
	assert.Equal(t, []string{}, task.Result())

	bad := &fakeEngine{corrections: []string{"hello", ""}}
	task, err = NewCorrectionsTask("helo", &fakeDictionary{engine: bad}, setupTestLogger())
	require.NoError(t, err)
	err = task.Execute(context.Background())
	assert.ErrorIs(t, err, spelling.ErrContractViolation)
	assert.ErrorIs(t, err, domain.ErrEmptyCorrection)
	assert.Equal(t, TaskStatusFailed, task.Status())
}

func TestFactory(t *testing.T) {
	t.Parallel()

	dict := &fakeDictionary{engine: &fakeEngine{corrections: []string{"a"}}}
	factory := NewFactory(dict, setupTestLogger())

	check, err := factory.NewCheckSpelling(textbuf.New("text"))
	require.NoError(t, err)
	assert.Equal(t, 4, check.TextLen())

	corr, err := factory.NewCorrections("wrd")
	require.NoError(t, err)
	require.NoError(t, corr.Execute(context.Background()))
	assert.Equal(t, []string{"a"}, corr.Result())
}
