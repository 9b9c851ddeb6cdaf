package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Common errors returned by the CompletionQueue
var (
	// ErrConcurrentConsumer is returned when a second goroutine tries to drain
	// completions while another one is already doing so
	ErrConcurrentConsumer = errors.New("completion queue already has an active consumer")

	// ErrCompletionsClosed is returned when posting to a closed completion queue
	ErrCompletionsClosed = errors.New("completion queue is closed")
)

// Completion is the outcome of one task, waiting to be delivered on the
// controlling goroutine.
type Completion struct {
	// TaskID is uuid.Nil for completions that never went through a worker
	TaskID   uuid.UUID
	TaskType string
	Err      error

	reply func()
}

// NewCompletion wraps reply so it can be posted to a CompletionQueue.
func NewCompletion(taskID uuid.UUID, taskType string, err error, reply func()) Completion {
	return Completion{
		TaskID:   taskID,
		TaskType: taskType,
		Err:      err,
		reply:    reply,
	}
}

// CompletionQueue collects finished work from any goroutine and hands it to a
// single consumer. Posting never blocks; the queue grows with the number of
// finished but undelivered tasks, which the bounded task queue already caps.
type CompletionQueue struct {
	mu      sync.Mutex
	items   []Completion
	closed  bool
	drained chan struct{}

	ready     chan struct{}
	consuming atomic.Bool
	delivered atomic.Int64

	logger *slog.Logger
}

// NewCompletionQueue creates an empty, open completion queue
func NewCompletionQueue(logger *slog.Logger) *CompletionQueue {
	return &CompletionQueue{
		drained: make(chan struct{}),
		ready:   make(chan struct{}, 1),
		logger:  logger,
	}
}

// Post appends a completion. It is safe to call from any goroutine.
func (q *CompletionQueue) Post(c Completion) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Error("completion posted after close",
			"task_id", c.TaskID,
			"task_type", c.TaskType)
		return ErrCompletionsClosed
	}
	q.items = append(q.items, c)
	q.mu.Unlock()

	q.signal()
	return nil
}

func (q *CompletionQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives a value whenever completions may be
// waiting. Use it in a select loop and call Drain when it fires.
func (q *CompletionQueue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of completions waiting for delivery
func (q *CompletionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Delivered returns the number of completions handed to their reply so far
func (q *CompletionQueue) Delivered() int64 {
	return q.delivered.Load()
}

// Drain delivers every waiting completion on the calling goroutine and
// returns how many it delivered. Completions posted while draining are
// delivered too. Only one goroutine may drain at a time.
func (q *CompletionQueue) Drain() (int, error) {
	if !q.consuming.CompareAndSwap(false, true) {
		return 0, ErrConcurrentConsumer
	}
	defer q.release()
	return q.drainLocked(), nil
}

// release gives up the consumer role. A Close that happened while a reply was
// running left marking the queue drained to the consumer.
func (q *CompletionQueue) release() {
	q.consuming.Store(false)

	q.mu.Lock()
	if q.closed && len(q.items) == 0 {
		q.markDrained()
	}
	q.mu.Unlock()
}

// drainLocked delivers completions until the queue is empty. The caller must
// hold the consumer flag.
func (q *CompletionQueue) drainLocked() int {
	n := 0
	for {
		c, ok := q.pop()
		if !ok {
			return n
		}
		q.delivered.Add(1)
		n++
		if c.reply != nil {
			c.reply()
		}
	}
}

func (q *CompletionQueue) pop() (Completion, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		if q.closed {
			q.markDrained()
		}
		return Completion{}, false
	}

	c := q.items[0]
	q.items[0] = Completion{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// release the backing array once the burst is delivered
		q.items = nil
	}
	return c, true
}

// markDrained must be called with mu held
func (q *CompletionQueue) markDrained() {
	select {
	case <-q.drained:
	default:
		close(q.drained)
	}
}

// Run delivers completions as they arrive until ctx is done or the queue is
// closed and empty. It holds the consumer role for its whole lifetime.
func (q *CompletionQueue) Run(ctx context.Context) error {
	if !q.consuming.CompareAndSwap(false, true) {
		return ErrConcurrentConsumer
	}
	defer q.release()

	for {
		q.drainLocked()

		select {
		case <-q.drained:
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.ready:
		case <-q.drained:
			return nil
		}
	}
}

// Close stops accepting completions. Completions already posted stay
// queued until a consumer drains them. While a consumer is active the queue
// is not drained before its current reply returns.
func (q *CompletionQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	if len(q.items) == 0 && !q.consuming.Load() {
		q.markDrained()
	}
	q.mu.Unlock()

	q.signal()
}

// Drained returns a channel closed once the queue is closed and every
// completion has been delivered
func (q *CompletionQueue) Drained() <-chan struct{} {
	return q.drained
}
