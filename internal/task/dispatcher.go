package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrDispatcherStopped is returned when submitting after Shutdown
var ErrDispatcherStopped = errors.New("dispatcher is shut down")

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize bounds how many accepted tasks may wait for a worker.
	// Submissions beyond it fail with ErrQueueFull.
	QueueSize int
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// submission carries a task through the queue together with the reply that
// must run when it finishes
type submission struct {
	Task
	reply ReplyFunc
}

// Dispatcher accepts tasks from the controlling goroutine, executes them on a
// worker pool and posts each outcome to a CompletionQueue.
type Dispatcher struct {
	queue       *TaskQueue
	pool        *WorkerPool
	store       *InMemoryTaskStore
	completions *CompletionQueue
	metrics     Metrics
	logger      *slog.Logger

	mu       sync.RWMutex
	stopped  bool
	rejected atomic.Int64
}

// NewDispatcher creates a dispatcher and starts its workers
func NewDispatcher(
	config DispatcherConfig,
	completions *CompletionQueue,
	metrics Metrics,
	logger *slog.Logger,
) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	logger = logger.With("component", "dispatcher")

	queue := NewTaskQueue(config.QueueSize, logger)
	d := &Dispatcher{
		queue:       queue,
		pool:        NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		store:       NewInMemoryTaskStore(),
		completions: completions,
		metrics:     metrics,
		logger:      logger,
	}
	d.pool.SetStartHandler(d.onStart)
	d.pool.SetFinishHandler(d.onFinish)
	d.pool.Start()
	return d
}

// Submit queues task for execution without blocking. reply runs on the
// goroutine that drains the completion queue, exactly once, after the task
// finishes. On error the task was not accepted and reply will never run.
func (d *Dispatcher) Submit(ctx context.Context, task Task, reply ReplyFunc) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.reject(task, "stopped")
		return ErrDispatcherStopped
	}

	if err := d.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := d.queue.Enqueue(&submission{Task: task, reply: reply}); err != nil {
		d.store.DeleteTask(task.ID())
		reason := "closed"
		if errors.Is(err, ErrQueueFull) {
			reason = "queue_full"
		}
		d.reject(task, reason)
		return err
	}

	d.metrics.TaskSubmitted(task.Type())
	d.metrics.QueueDepth(d.queue.Len())
	return nil
}

func (d *Dispatcher) reject(task Task, reason string) {
	d.rejected.Add(1)
	d.metrics.TaskRejected(task.Type(), reason)
	d.logger.Warn("task rejected",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"reason", reason)
}

func (d *Dispatcher) onStart(task Task, workerID int) {
	d.metrics.QueueDepth(d.queue.Len())
	if err := d.store.UpdateTaskStatus(context.Background(), task.ID(), TaskStatusRunning, ""); err != nil {
		d.logger.Error("failed to update task status to running",
			"task_id", task.ID(),
			"error", err)
	}
}

func (d *Dispatcher) onFinish(task Task, err error, elapsed time.Duration) {
	status := TaskStatusCompleted
	errMsg := ""
	if err != nil {
		status = TaskStatusFailed
		errMsg = err.Error()
	}
	if updateErr := d.store.UpdateTaskStatus(context.Background(), task.ID(), status, errMsg); updateErr != nil {
		d.logger.Error("failed to update task status",
			"task_id", task.ID(),
			"status", status,
			"error", updateErr)
	}
	d.metrics.TaskFinished(task.Type(), status, elapsed)

	sub, ok := task.(*submission)
	if !ok {
		d.logger.Error("unexpected task in dispatcher queue", "task_id", task.ID())
		return
	}

	inner := sub.Task
	reply := sub.reply
	postErr := d.completions.Post(NewCompletion(inner.ID(), inner.Type(), err, func() {
		if reply != nil {
			reply(inner, err)
		}
	}))
	if postErr != nil {
		d.logger.Error("failed to post completion",
			"task_id", inner.ID(),
			"error", postErr)
	}
}

// Stats returns a snapshot of dispatcher activity
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Stats:    d.store.Stats(),
		Queued:   d.queue.Len(),
		Rejected: d.rejected.Load(),
	}
}

// TaskInfo describes one accepted task that has not finished
type TaskInfo struct {
	ID     uuid.UUID  `json:"id"`
	Type   string     `json:"type"`
	Status TaskStatus `json:"status"`
}

// InFlight lists the tasks waiting for a worker, then those executing.
func (d *Dispatcher) InFlight(ctx context.Context) ([]TaskInfo, error) {
	pending, err := d.store.GetPendingTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	running, err := d.store.GetRunningTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list running tasks: %w", err)
	}

	infos := make([]TaskInfo, 0, len(pending)+len(running))
	for _, t := range pending {
		infos = append(infos, TaskInfo{ID: t.ID(), Type: t.Type(), Status: TaskStatusPending})
	}
	for _, t := range running {
		infos = append(infos, TaskInfo{ID: t.ID(), Type: t.Type(), Status: TaskStatusRunning})
	}
	return infos, nil
}

// DispatcherStats extends the store counts with queue-level figures
type DispatcherStats struct {
	Stats
	Queued   int
	Rejected int64
}

// Shutdown stops accepting tasks and waits until every accepted task has
// finished and posted its completion, or until ctx is done. Tasks are never
// cancelled; if ctx expires the workers keep draining in the background.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		d.queue.Close()
	}
	d.mu.Unlock()

	if err := d.pool.Wait(ctx); err != nil {
		// ctx is already done; the store does not block
		running, _ := d.store.GetRunningTasks(context.Background())
		ids := make([]uuid.UUID, 0, len(running))
		for _, t := range running {
			ids = append(ids, t.ID())
		}
		d.logger.Warn("dispatcher shutdown interrupted",
			"error", err,
			"in_flight", d.store.Stats().InFlight(),
			"running", ids)
		return err
	}
	d.logger.Info("dispatcher shut down", "stats", d.store.Stats())
	return nil
}
