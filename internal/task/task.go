package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is possible from s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task type constants
const (
	// TaskTypeCheckSpelling checks a whole text buffer for misspelled ranges
	TaskTypeCheckSpelling = "check_spelling"

	// TaskTypeGetCorrections looks up correction candidates for one word
	TaskTypeGetCorrections = "get_corrections"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskStore tracks the status of tasks that have been accepted by the
// dispatcher and have not finished yet
type TaskStore interface {
	// SaveTask records a newly accepted task
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus records a status transition for a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks waiting for a worker
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetRunningTasks retrieves all tasks currently executing
	GetRunningTasks(ctx context.Context) ([]Task, error)
}

// ReplyFunc receives a finished task on the controlling goroutine.
// err is nil when the task completed successfully.
type ReplyFunc func(task Task, err error)
