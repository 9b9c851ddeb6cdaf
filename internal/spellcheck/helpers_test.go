package spellcheck

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/spelling"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Logger = testLogger()
	return opts
}

func newSpellchecker(t *testing.T, engine spelling.Engine, opts Options) *Spellchecker {
	t.Helper()
	sc, err := New(engine, opts)
	require.NoError(t, err)
	return sc
}

// pumpUntil runs callbacks on the test goroutine until done reports true.
func pumpUntil(t *testing.T, sc *Spellchecker, done func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !done() {
		select {
		case <-sc.Completions():
			_, err := sc.DispatchCompletions()
			require.NoError(t, err)
		case <-deadline:
			t.Fatal("timed out waiting for completions")
		}
	}
}

func closeSpellchecker(t *testing.T, sc *Spellchecker) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sc.Close(ctx))
}

// stubEngine is a configurable engine that detects mutations overlapping
// reads. Every word in words is known; CheckSpelling reports every token of
// text that is not.
type stubEngine struct {
	// guarded by the handle's lease, never by the engine itself
	words    map[string]bool
	contents []byte
	loadOK   bool

	readDelay  time.Duration
	block      chan struct{}
	panicRead  bool
	badRanges  []domain.MisspelledRange
	correction []string

	reading    atomic.Int32
	overlapped atomic.Bool
	mutations  atomic.Int32
	reads      atomic.Int32

	mu        sync.Mutex
	available map[string][]string
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		words:  map[string]bool{"hello": true, "world": true},
		loadOK: true,
	}
}

func (s *stubEngine) beginMutation() {
	s.mutations.Add(1)
	if s.reading.Load() > 0 {
		s.overlapped.Store(true)
	}
}

func (s *stubEngine) beginRead() func() {
	s.reading.Add(1)
	s.reads.Add(1)
	return func() { s.reading.Add(-1) }
}

func (s *stubEngine) SetDictionary(language string) bool {
	s.beginMutation()
	s.contents = nil
	return s.loadOK
}

func (s *stubEngine) SetDictionaryFromContents(data []byte) bool {
	s.beginMutation()
	s.contents = data
	return s.loadOK
}

func (s *stubEngine) CheckSpelling(text []uint16) []domain.MisspelledRange {
	defer s.beginRead()()

	if s.block != nil {
		<-s.block
	}
	if s.panicRead {
		panic("stub engine failure")
	}
	if s.badRanges != nil {
		return s.badRanges
	}

	snapshot := string(s.contents)
	if s.readDelay > 0 {
		time.Sleep(s.readDelay)
	}
	if string(s.contents) != snapshot {
		s.overlapped.Store(true)
	}

	var ranges []domain.MisspelledRange
	start := -1
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			word := make([]rune, 0, i-start)
			for _, u := range text[start:i] {
				word = append(word, rune(u))
			}
			if !s.words[string(word)] {
				ranges = append(ranges, domain.MisspelledRange{Start: start, End: i})
			}
			start = -1
		}
	}
	return ranges
}

func (s *stubEngine) GetCorrectionsForMisspelling(word string) []string {
	defer s.beginRead()()
	if s.block != nil {
		<-s.block
	}
	return s.correction
}

func (s *stubEngine) IsMisspelled(word string) bool {
	defer s.beginRead()()
	return !s.words[word]
}

func (s *stubEngine) Add(word string) {
	s.beginMutation()
	s.words[word] = true
}

func (s *stubEngine) Remove(word string) {
	s.beginMutation()
	delete(s.words, word)
}

func (s *stubEngine) GetAvailableDictionaries(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available[path]
}
