package dictionary

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/spellcheck/internal/spelling"
)

// Info describes the dictionary currently bound to a handle.
type Info struct {
	Loaded     bool
	Language   string
	Generation uint64
	PinnedSize int
}

// generation is one loaded dictionary. A new generation is created on every
// successful load; its pinned contents are dropped when it is replaced.
type generation struct {
	id       uint64
	language string
	pinned   []byte
	once     sync.Once
}

// Handle serializes access to a spell engine and the dictionary loaded in it.
type Handle struct {
	mu      sync.RWMutex
	engine  spelling.Engine
	current *generation
	nextID  uint64
	closed  bool
	logger  *slog.Logger

	leases   atomic.Int64
	releases atomic.Int64

	// onRelease is called with the generation id each time pinned contents
	// are released. Set before the handle is shared.
	onRelease func(id uint64)
}

// NewHandle wraps engine in a handle with no dictionary loaded.
func NewHandle(engine spelling.Engine, logger *slog.Logger) (*Handle, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{
		engine: engine,
		logger: logger.With("component", "dictionary_handle"),
	}, nil
}

// SetReleaseHook registers fn to be called whenever a generation's pinned
// contents are released. It must be called before the handle is shared.
func (h *Handle) SetReleaseHook(fn func(id uint64)) {
	h.onRelease = fn
}

// Read runs fn with shared access to the engine. It returns
// spelling.ErrNoDictionary without calling fn when nothing is loaded.
// Any number of Read calls may run at once; none overlaps a Load or Mutate.
func (h *Handle) Read(fn func(engine spelling.Engine) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrHandleClosed
	}
	if h.current == nil {
		return spelling.ErrNoDictionary
	}

	h.leases.Add(1)
	defer h.leases.Add(-1)
	return fn(h.engine)
}

// Query runs fn with shared access to the engine whether or not a dictionary
// is loaded. loaded tells fn which case it is in.
func (h *Handle) Query(fn func(engine spelling.Engine, loaded bool)) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrHandleClosed
	}

	h.leases.Add(1)
	defer h.leases.Add(-1)
	fn(h.engine, h.current != nil)
	return nil
}

// Mutate runs fn with exclusive access to the engine. It waits for every
// in-flight Read and Query to finish first.
func (h *Handle) Mutate(fn func(engine spelling.Engine)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	fn(h.engine)
	return nil
}

// Load binds the dictionary named by tag. The tag is handed to the engine
// unchanged; how it is resolved to a dictionary is up to the engine.
func (h *Handle) Load(tag string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false, ErrHandleClosed
	}

	loaded := h.engine.SetDictionary(tag)
	h.replaceLocked(loaded, tag, nil)
	return loaded, nil
}

// LoadContents binds a dictionary from raw contents. data is retained by
// reference, not copied, until the dictionary is replaced or the handle is
// closed; callers must not modify it in the meantime. tag is recorded for
// Info only.
func (h *Handle) LoadContents(tag string, data []byte) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false, ErrHandleClosed
	}

	loaded := h.engine.SetDictionaryFromContents(data)
	if loaded {
		h.replaceLocked(true, tag, data)
	} else {
		h.replaceLocked(false, tag, nil)
	}
	return loaded, nil
}

// replaceLocked swaps the current generation. Holding the write lock means no
// reader of the old generation is still running, so its pinned contents can
// be released here.
func (h *Handle) replaceLocked(loaded bool, tag string, pinned []byte) {
	old := h.current
	h.current = nil

	if loaded {
		h.nextID++
		h.current = &generation{
			id:       h.nextID,
			language: tag,
			pinned:   pinned,
		}
		h.logger.Info("dictionary loaded",
			"language", tag,
			"generation", h.nextID,
			"pinned_bytes", len(pinned))
	} else {
		h.logger.Warn("dictionary failed to load", "language", tag)
	}

	if old != nil {
		h.releaseLocked(old)
	}
}

func (h *Handle) releaseLocked(g *generation) {
	g.once.Do(func() {
		size := len(g.pinned)
		g.pinned = nil
		h.releases.Add(1)
		h.logger.Debug("dictionary generation released",
			"generation", g.id,
			"language", g.language,
			"pinned_bytes", size)
		if h.onRelease != nil {
			h.onRelease(g.id)
		}
	})
}

// Info reports the currently bound dictionary.
func (h *Handle) Info() Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.current == nil {
		return Info{}
	}
	return Info{
		Loaded:     true,
		Language:   h.current.language,
		Generation: h.current.id,
		PinnedSize: len(h.current.pinned),
	}
}

// ActiveLeases returns the number of Read and Query calls currently running.
func (h *Handle) ActiveLeases() int64 {
	return h.leases.Load()
}

// Releases returns how many generations have been released so far.
func (h *Handle) Releases() int64 {
	return h.releases.Load()
}

// Close waits for running readers, releases the current generation and
// rejects further use. Calling Close more than once is a no-op.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	if h.current != nil {
		h.releaseLocked(h.current)
		h.current = nil
	}
	h.logger.Debug("dictionary handle closed")
}
