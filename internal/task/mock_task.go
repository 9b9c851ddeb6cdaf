package task

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTask is a simple implementation of the Task interface for testing
type MockTask struct {
	TaskID    uuid.UUID
	TaskType  string
	ExecuteFn func(ctx context.Context) error

	executions atomic.Int32
	status     atomic.Value
}

// NewMockTask creates a new MockTask with the given type and a no-op body
func NewMockTask(taskType string) *MockTask {
	t := &MockTask{
		TaskID:    uuid.New(),
		TaskType:  taskType,
		ExecuteFn: func(ctx context.Context) error { return nil },
	}
	t.status.Store(TaskStatusPending)
	return t
}

// ID returns the task's unique identifier
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Status returns the current task status
func (t *MockTask) Status() TaskStatus {
	return t.status.Load().(TaskStatus)
}

// Executions returns how many times Execute has been called
func (t *MockTask) Executions() int {
	return int(t.executions.Load())
}

// Execute runs the task logic
func (t *MockTask) Execute(ctx context.Context) error {
	t.executions.Add(1)
	t.status.Store(TaskStatusRunning)
	err := t.ExecuteFn(ctx)
	if err != nil {
		t.status.Store(TaskStatusFailed)
	} else {
		t.status.Store(TaskStatusCompleted)
	}
	return err
}
