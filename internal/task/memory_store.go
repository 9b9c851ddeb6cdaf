package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stats summarizes the tasks a store has seen
type Stats struct {
	Pending   int
	Running   int
	Completed int64
	Failed    int64
}

// InFlight returns the number of tasks not yet in a terminal state
func (s Stats) InFlight() int {
	return s.Pending + s.Running
}

type taskRecord struct {
	task      Task
	status    TaskStatus
	updatedAt time.Time
}

// InMemoryTaskStore implements TaskStore for tasks that live only as long as
// the process. Records are dropped when a task reaches a terminal status, so
// the store only ever holds in-flight tasks.
type InMemoryTaskStore struct {
	mutex     sync.RWMutex
	tasks     map[uuid.UUID]*taskRecord
	completed int64
	failed    int64
}

var _ TaskStore = (*InMemoryTaskStore)(nil)

// NewInMemoryTaskStore creates an empty store
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		tasks: make(map[uuid.UUID]*taskRecord),
	}
}

// SaveTask records a task as pending
func (s *InMemoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks[task.ID()] = &taskRecord{
		task:      task,
		status:    TaskStatusPending,
		updatedAt: time.Now(),
	}
	return nil
}

// UpdateTaskStatus records a status change. Terminal statuses remove the
// record and bump the matching counter. Unknown IDs are ignored.
func (s *InMemoryTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, exists := s.tasks[taskID]
	if !exists {
		return nil
	}

	switch status {
	case TaskStatusCompleted:
		s.completed++
		delete(s.tasks, taskID)
	case TaskStatusFailed:
		s.failed++
		delete(s.tasks, taskID)
	default:
		record.status = status
		record.updatedAt = time.Now()
	}
	return nil
}

// DeleteTask forgets a task without counting it as finished
func (s *InMemoryTaskStore) DeleteTask(taskID uuid.UUID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.tasks, taskID)
}

// GetPendingTasks retrieves all tasks waiting for a worker
func (s *InMemoryTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.byStatus(TaskStatusPending), nil
}

// GetRunningTasks retrieves all tasks currently executing
func (s *InMemoryTaskStore) GetRunningTasks(ctx context.Context) ([]Task, error) {
	return s.byStatus(TaskStatusRunning), nil
}

func (s *InMemoryTaskStore) byStatus(status TaskStatus) []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var tasks []Task
	for _, record := range s.tasks {
		if record.status == status {
			tasks = append(tasks, record.task)
		}
	}
	return tasks
}

// Stats returns a snapshot of task counts
func (s *InMemoryTaskStore) Stats() Stats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := Stats{
		Completed: s.completed,
		Failed:    s.failed,
	}
	for _, record := range s.tasks {
		switch record.status {
		case TaskStatusPending:
			stats.Pending++
		case TaskStatusRunning:
			stats.Running++
		}
	}
	return stats
}
