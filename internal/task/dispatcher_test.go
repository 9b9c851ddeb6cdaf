package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMetrics counts dispatcher events by kind
type recordingMetrics struct {
	mu        sync.Mutex
	submitted int
	rejected  map[string]int
	finished  map[TaskStatus]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		rejected: make(map[string]int),
		finished: make(map[TaskStatus]int),
	}
}

func (m *recordingMetrics) TaskSubmitted(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted++
}

func (m *recordingMetrics) TaskRejected(_ string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *recordingMetrics) TaskFinished(_ string, status TaskStatus, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished[status]++
}

func (m *recordingMetrics) QueueDepth(int) {}

func newTestDispatcher(t *testing.T, config DispatcherConfig, metrics Metrics) (*Dispatcher, *CompletionQueue) {
	t.Helper()
	completions := NewCompletionQueue(setupTestLogger())
	d := NewDispatcher(config, completions, metrics, setupTestLogger())
	return d, completions
}

func shutdown(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
}

func TestDispatcher_SubmitDeliversReplyOnDrain(t *testing.T) {
	t.Parallel()

	metrics := newRecordingMetrics()
	d, completions := newTestDispatcher(t, DefaultDispatcherConfig(), metrics)

	ok := newMockTask()
	bad := newMockTask()
	bad.ExecuteFn = func(ctx context.Context) error { return errors.New("engine exploded") }

	replies := make(map[string]error)
	require.NoError(t, d.Submit(context.Background(), ok, func(task Task, err error) {
		assert.Same(t, ok, task)
		replies["ok"] = err
	}))
	require.NoError(t, d.Submit(context.Background(), bad, func(task Task, err error) {
		assert.Same(t, bad, task)
		replies["bad"] = err
	}))

	shutdown(t, d)

	// Nothing is delivered until the controlling goroutine drains
	assert.Empty(t, replies)

	n, err := completions.Drain()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, replies["ok"])
	assert.EqualError(t, replies["bad"], "engine exploded")

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Zero(t, stats.InFlight())

	assert.Equal(t, 2, metrics.submitted)
	assert.Equal(t, 1, metrics.finished[TaskStatusCompleted])
	assert.Equal(t, 1, metrics.finished[TaskStatusFailed])
}

func TestDispatcher_QueueFull(t *testing.T) {
	t.Parallel()

	metrics := newRecordingMetrics()
	d, completions := newTestDispatcher(t, DispatcherConfig{WorkerCount: 1, QueueSize: 1}, metrics)

	started := make(chan struct{})
	release := make(chan struct{})
	blocker := newMockTask()
	blocker.ExecuteFn = func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}

	require.NoError(t, d.Submit(context.Background(), blocker, nil))
	<-started

	// One slot in the queue, the worker is busy
	require.NoError(t, d.Submit(context.Background(), newMockTask(), nil))

	var replied atomic.Bool
	err := d.Submit(context.Background(), newMockTask(), func(Task, error) { replied.Store(true) })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int64(1), d.Stats().Rejected)
	assert.Equal(t, 1, metrics.rejected["queue_full"])

	close(release)
	shutdown(t, d)

	n, err := completions.Drain()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "rejected task never produces a completion")
	assert.False(t, replied.Load())
}

func TestDispatcher_InFlight(t *testing.T) {
	t.Parallel()

	d, completions := newTestDispatcher(t, DispatcherConfig{WorkerCount: 1, QueueSize: 4}, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	blocker := newMockTask()
	blocker.ExecuteFn = func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}
	require.NoError(t, d.Submit(ctx, blocker, nil))
	<-started
	waiting := newMockTask()
	require.NoError(t, d.Submit(ctx, waiting, nil))

	infos, err := d.InFlight(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TaskInfo{
		{ID: waiting.ID(), Type: "mock", Status: TaskStatusPending},
		{ID: blocker.ID(), Type: "mock", Status: TaskStatusRunning},
	}, infos)

	close(release)
	shutdown(t, d)
	_, err = completions.Drain()
	require.NoError(t, err)

	infos, err = d.InFlight(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDispatcher_SubmitAfterShutdown(t *testing.T) {
	t.Parallel()

	metrics := newRecordingMetrics()
	d, _ := newTestDispatcher(t, DefaultDispatcherConfig(), metrics)
	shutdown(t, d)

	err := d.Submit(context.Background(), newMockTask(), nil)
	assert.ErrorIs(t, err, ErrDispatcherStopped)
	assert.Equal(t, 1, metrics.rejected["stopped"])

	// Shutdown is idempotent
	shutdown(t, d)
}

func TestDispatcher_ShutdownWaitsForAcceptedTasks(t *testing.T) {
	t.Parallel()

	d, completions := newTestDispatcher(t, DispatcherConfig{WorkerCount: 4, QueueSize: 200}, nil)

	const total = 200
	var executed atomic.Int32
	for i := 0; i < total; i++ {
		task := newMockTask()
		task.ExecuteFn = func(ctx context.Context) error {
			executed.Add(1)
			return nil
		}
		require.NoError(t, d.Submit(context.Background(), task, nil))
	}

	shutdown(t, d)
	assert.Equal(t, int32(total), executed.Load())
	assert.Equal(t, total, completions.Len())
}

func TestDispatcher_ShutdownTimeout(t *testing.T) {
	t.Parallel()

	d, completions := newTestDispatcher(t, DispatcherConfig{WorkerCount: 1, QueueSize: 1}, nil)

	release := make(chan struct{})
	slow := newMockTask()
	slow.ExecuteFn = func(ctx context.Context) error {
		<-release
		return nil
	}
	require.NoError(t, d.Submit(context.Background(), slow, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)

	// The task is not cancelled and still completes
	close(release)
	shutdown(t, d)
	assert.Equal(t, 1, completions.Len())
	assert.Equal(t, TaskStatusCompleted, slow.Status())
}

func TestDispatcher_PanickingTaskFails(t *testing.T) {
	t.Parallel()

	d, completions := newTestDispatcher(t, DefaultDispatcherConfig(), nil)

	task := newMockTask()
	task.ExecuteFn = func(ctx context.Context) error { panic("bad engine") }

	var got error
	require.NoError(t, d.Submit(context.Background(), task, func(_ Task, err error) { got = err }))
	shutdown(t, d)

	_, err := completions.Drain()
	require.NoError(t, err)
	assert.ErrorIs(t, got, ErrTaskPanicked)
	assert.Equal(t, int64(1), d.Stats().Failed)
}
