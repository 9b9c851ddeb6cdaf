package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/phrazzld/spellcheck/internal/platform/logger"
)

// ErrTaskPanicked is returned for a task whose Execute panicked
var ErrTaskPanicked = errors.New("task panicked")

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. Workers exit once the queue is closed and drained,
// so every queued task is executed exactly once.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// done is closed after every worker has exited
	done chan struct{}

	startOnce sync.Once

	// logger for structured logging
	logger *slog.Logger

	// startHandler is called on the worker goroutine before Execute
	startHandler func(task Task, workerID int)

	// finishHandler is called on the worker goroutine after Execute returns
	// or panics. err is nil on success.
	finishHandler func(task Task, err error, elapsed time.Duration)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// SetStartHandler sets a hook run on the worker goroutine before each task executes.
// Must be called before Start.
func (p *WorkerPool) SetStartHandler(handler func(task Task, workerID int)) {
	p.startHandler = handler
}

// SetFinishHandler sets a hook run on the worker goroutine after each task,
// whatever its outcome. Must be called before Start.
func (p *WorkerPool) SetFinishHandler(handler func(task Task, err error, elapsed time.Duration)) {
	p.finishHandler = handler
}

// Start launches the worker goroutines. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
		p.logger.Debug("worker pool started", "worker_count", p.workerCount)
	})
}

// Wait blocks until every worker has exited, which happens once the task
// queue is closed and drained, or until ctx is done.
func (p *WorkerPool) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed after every worker has exited
func (p *WorkerPool) Done() <-chan struct{} {
	return p.done
}

// WorkerCount returns the number of worker goroutines
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// worker processes tasks from the queue until it is closed
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for task := range p.taskQueue.GetChannel() {
		p.processTask(task, id)
	}
	p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

// processTask handles execution of a single task
func (p *WorkerPool) processTask(task Task, workerID int) {
	log := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if p.startHandler != nil {
		p.startHandler(task, workerID)
	}

	log.Debug("processing task")
	started := time.Now()
	err := p.execute(task, log)
	elapsed := time.Since(started)

	if err != nil {
		log.Warn("task execution failed", "error", err, "elapsed", elapsed)
	} else {
		log.Debug("task completed successfully", "elapsed", elapsed)
	}

	if p.finishHandler != nil {
		p.finishHandler(task, err, elapsed)
	}
}

// execute runs the task with log in its context, turning a panic into an error
func (p *WorkerPool) execute(task Task, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task.Execute(logger.WithLogger(context.Background(), log))
}
