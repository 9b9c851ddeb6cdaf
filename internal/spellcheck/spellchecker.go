package spellcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/spellcheck/internal/config"
	"github.com/phrazzld/spellcheck/internal/dictionary"
	"github.com/phrazzld/spellcheck/internal/domain"
	"github.com/phrazzld/spellcheck/internal/platform/metrics"
	"github.com/phrazzld/spellcheck/internal/spelling"
	"github.com/phrazzld/spellcheck/internal/task"
	"github.com/phrazzld/spellcheck/internal/textbuf"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Options configures a Spellchecker
type Options struct {
	Dispatcher task.DispatcherConfig

	// SearchPath is used by GetAvailableDictionaries when called with an
	// empty path
	SearchPath string

	// Registerer, when set, receives the dispatcher and snapshot collectors
	Registerer       prom.Registerer
	MetricsNamespace string

	Logger *slog.Logger
}

// DefaultOptions returns Options with reasonable defaults and no metrics
func DefaultOptions() Options {
	return Options{
		Dispatcher: task.DefaultDispatcherConfig(),
		SearchPath: ".",
	}
}

// OptionsFromConfig maps loaded configuration onto Options. Metrics are
// registered with reg only when enabled in cfg.
func OptionsFromConfig(cfg *config.Config, reg prom.Registerer, logger *slog.Logger) Options {
	opts := Options{
		Dispatcher: task.DispatcherConfig{
			WorkerCount: cfg.Dispatcher.Workers,
			QueueSize:   cfg.Dispatcher.QueueSize,
		},
		SearchPath: cfg.Dictionary.SearchPath,
		Logger:     logger,
	}
	if cfg.Metrics.Enabled {
		opts.Registerer = reg
		opts.MetricsNamespace = cfg.Metrics.Namespace
	}
	return opts
}

// Stats is a point-in-time view of a Spellchecker
type Stats struct {
	task.DispatcherStats

	// PendingReplies counts finished requests whose callback has not run yet
	PendingReplies int
	// Delivered counts callbacks run so far
	Delivered int64

	Dictionary         dictionary.Info
	ActiveLeases       int64
	DictionaryReleases int64
}

// Spellchecker checks text against one dictionary on a pool of workers.
type Spellchecker struct {
	handle      *dictionary.Handle
	factory     *task.Factory
	dispatcher  *task.Dispatcher
	completions *task.CompletionQueue
	validator   *requestValidator
	searchPath  string
	logger      *slog.Logger

	// mu guards closed; submissions hold it shared so Close sees a stable set
	mu     sync.RWMutex
	closed bool
}

// New creates a Spellchecker around engine with no dictionary loaded. The
// worker pool starts immediately.
func New(engine spelling.Engine, opts Options) (*Spellchecker, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handle, err := dictionary.NewHandle(engine, logger)
	if err != nil {
		return nil, err
	}

	if opts.SearchPath == "" {
		opts.SearchPath = "."
	}

	var taskMetrics task.Metrics = task.NopMetrics{}
	if opts.Registerer != nil {
		exporter, err := metrics.NewExporter(opts.MetricsNamespace, opts.Registerer, metrics.ExporterOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to register dispatcher metrics: %w", err)
		}
		taskMetrics = exporter
	}

	completions := task.NewCompletionQueue(logger.With("component", "completion_queue"))
	s := &Spellchecker{
		handle:      handle,
		factory:     task.NewFactory(handle, logger),
		dispatcher:  task.NewDispatcher(opts.Dispatcher, completions, taskMetrics, logger),
		completions: completions,
		validator:   newRequestValidator(),
		searchPath:  opts.SearchPath,
		logger:      logger.With("component", "spellchecker"),
	}

	if opts.Registerer != nil {
		if _, err := metrics.NewSnapshotCollector(opts.MetricsNamespace, opts.Registerer, s.metricsSnapshot); err != nil {
			_ = s.dispatcher.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to register snapshot metrics: %w", err)
		}
	}

	return s, nil
}

// SetDictionary loads the dictionary named by language, such as "en-US",
// "en_US" or a name returned by GetAvailableDictionaries. The name is passed
// to the engine as given. It returns false when the engine cannot load it;
// in that case no dictionary is bound afterwards. It waits for running checks
// to finish before swapping.
func (s *Spellchecker) SetDictionary(language string) (bool, error) {
	if err := s.validator.check(languageRequest{Language: language}); err != nil {
		return false, err
	}
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.mu.RUnlock()

	loaded, err := s.handle.Load(language)
	return loaded, s.mapHandleErr(err)
}

// SetDictionaryFromContents loads a dictionary from raw contents. data is
// retained without copying until the dictionary is replaced or the
// Spellchecker is closed, and must not be modified until then. language is
// informational and may be empty.
func (s *Spellchecker) SetDictionaryFromContents(language string, data []byte) (bool, error) {
	if err := s.validator.check(contentsRequest{Data: data}); err != nil {
		return false, err
	}
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.mu.RUnlock()

	loaded, err := s.handle.LoadContents(language, data)
	return loaded, s.mapHandleErr(err)
}

// CheckSpelling finds the misspelled ranges of text in the background.
// Offsets in the result are UTF-16 code units. cb runs once on the goroutine
// that pumps completions. An error return means the request was not accepted
// and cb will not run; task.IsRetryable reports whether trying again later
// may succeed.
func (s *Spellchecker) CheckSpelling(text string, cb CheckCallback) error {
	return s.checkSpelling(textbuf.New(text), cb)
}

// CheckSpellingUnits is CheckSpelling for callers that already hold UTF-16
// text. units is copied before returning.
func (s *Spellchecker) CheckSpellingUnits(units []uint16, cb CheckCallback) error {
	return s.checkSpelling(textbuf.FromUnits(units), cb)
}

func (s *Spellchecker) checkSpelling(text textbuf.Buffer, cb CheckCallback) error {
	if err := s.validator.check(checkRequest{Callback: cb}); err != nil {
		return err
	}
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	if text.IsEmpty() {
		return s.completions.Post(task.NewCompletion(uuid.Nil, task.TaskTypeCheckSpelling, nil, func() {
			cb([]domain.MisspelledRange{}, nil)
		}))
	}

	t, err := s.factory.NewCheckSpelling(text)
	if err != nil {
		return err
	}
	return s.dispatcher.Submit(context.Background(), t, func(_ task.Task, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(t.Result(), nil)
	})
}

// GetCorrectionsForMisspelling looks up replacement candidates for word in
// the background. cb runs once on the goroutine that pumps completions.
func (s *Spellchecker) GetCorrectionsForMisspelling(word string, cb CorrectionsCallback) error {
	if err := s.validator.check(correctionsRequest{Callback: cb}); err != nil {
		return err
	}
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	t, err := s.factory.NewCorrections(word)
	if err != nil {
		return err
	}
	return s.dispatcher.Submit(context.Background(), t, func(_ task.Task, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(t.Result(), nil)
	})
}

// IsMisspelled reports whether word is unknown. With no dictionary loaded
// nothing is misspelled.
func (s *Spellchecker) IsMisspelled(word string) (bool, error) {
	if err := s.validator.check(wordRequest{Word: word}); err != nil {
		return false, err
	}
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.mu.RUnlock()

	misspelled := false
	err := s.handle.Query(func(engine spelling.Engine, loaded bool) {
		if loaded {
			misspelled = engine.IsMisspelled(word)
		}
	})
	return misspelled, s.mapHandleErr(err)
}

// Add adds word to the session word list. It waits for running checks.
func (s *Spellchecker) Add(word string) error {
	return s.mutateWord(word, spelling.Engine.Add)
}

// Remove removes word from the session word list. It waits for running checks.
func (s *Spellchecker) Remove(word string) error {
	return s.mutateWord(word, spelling.Engine.Remove)
}

func (s *Spellchecker) mutateWord(word string, op func(spelling.Engine, string)) error {
	if err := s.validator.check(wordRequest{Word: word}); err != nil {
		return err
	}
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	return s.mapHandleErr(s.handle.Mutate(func(engine spelling.Engine) {
		op(engine, word)
	}))
}

// GetAvailableDictionaries lists the dictionaries found at path, or at the
// configured search path when path is empty. The result is sorted and has
// no duplicates.
func (s *Spellchecker) GetAvailableDictionaries(path string) ([]string, error) {
	if path == "" {
		path = s.searchPath
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	var found []string
	err := s.handle.Query(func(engine spelling.Engine, _ bool) {
		found = engine.GetAvailableDictionaries(path)
	})
	if err != nil {
		return nil, s.mapHandleErr(err)
	}

	out := make([]string, 0, len(found))
	for _, name := range found {
		if name != "" {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Completions returns a channel that receives a value whenever callbacks may
// be waiting. Call DispatchCompletions when it fires.
func (s *Spellchecker) Completions() <-chan struct{} {
	return s.completions.Ready()
}

// DispatchCompletions runs every waiting callback on the calling goroutine
// and returns how many ran. It never blocks waiting for work. Only one
// goroutine may pump completions at a time; others get
// task.ErrConcurrentConsumer.
func (s *Spellchecker) DispatchCompletions() (int, error) {
	return s.completions.Drain()
}

// Run pumps completions on the calling goroutine until ctx is done or the
// Spellchecker is closed and every callback has run.
func (s *Spellchecker) Run(ctx context.Context) error {
	return s.completions.Run(ctx)
}

// Close stops accepting requests, waits for every accepted request to finish,
// runs the remaining callbacks and releases the dictionary. Callbacks run on
// the caller unless another goroutine is inside Run, in which case Close
// waits for it to deliver them. Close must not be called from a callback.
//
// If ctx ends first, Close returns its error and the dictionary stays loaded
// so in-flight tasks can finish; Close may be called again to complete.
func (s *Spellchecker) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.logger.Info("closing spellchecker", "stats", s.dispatcher.Stats())
	}
	s.mu.Unlock()

	if err := s.dispatcher.Shutdown(ctx); err != nil {
		return err
	}

	s.completions.Close()
	if _, err := s.completions.Drain(); err != nil {
		if !errors.Is(err, task.ErrConcurrentConsumer) {
			return err
		}
		select {
		case <-s.completions.Drained():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.handle.Close()
	s.logger.Info("spellchecker closed",
		"delivered", s.completions.Delivered(),
		"dictionary_releases", s.handle.Releases())
	return nil
}

// Stats returns a snapshot of request and dictionary activity
func (s *Spellchecker) Stats() Stats {
	return Stats{
		DispatcherStats:    s.dispatcher.Stats(),
		PendingReplies:     s.completions.Len(),
		Delivered:          s.completions.Delivered(),
		Dictionary:         s.handle.Info(),
		ActiveLeases:       s.handle.ActiveLeases(),
		DictionaryReleases: s.handle.Releases(),
	}
}

// InFlight lists the accepted requests that have not finished executing.
// It keeps working after Close so a stuck shutdown can be inspected.
func (s *Spellchecker) InFlight(ctx context.Context) ([]task.TaskInfo, error) {
	return s.dispatcher.InFlight(ctx)
}

func (s *Spellchecker) metricsSnapshot() metrics.Snapshot {
	st := s.Stats()
	return metrics.Snapshot{
		Pending:              st.Pending,
		Running:              st.Running,
		Completed:            st.Completed,
		Failed:               st.Failed,
		Rejected:             st.Rejected,
		PendingReplies:       st.PendingReplies,
		DictionaryLoaded:     st.Dictionary.Loaded,
		DictionaryGeneration: st.Dictionary.Generation,
		DictionaryReleases:   st.DictionaryReleases,
		ActiveLeases:         st.ActiveLeases,
	}
}

// acquire takes the shared side of mu and fails once Close has begun. On
// success the caller must RUnlock.
func (s *Spellchecker) acquire() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (s *Spellchecker) mapHandleErr(err error) error {
	if errors.Is(err, dictionary.ErrHandleClosed) {
		return ErrClosed
	}
	return err
}
