package task

import "sync"

// lifecycle guards a task's status. Valid transitions are
// pending -> running -> completed|failed; anything else is refused.
type lifecycle struct {
	mu     sync.Mutex
	status TaskStatus
}

func newLifecycle() lifecycle {
	return lifecycle{status: TaskStatusPending}
}

// Status returns the current task status
func (l *lifecycle) Status() TaskStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// transition moves to the next status and reports whether the move was legal.
func (l *lifecycle) transition(to TaskStatus) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !canTransition(l.status, to) {
		return false
	}
	l.status = to
	return true
}

func canTransition(from, to TaskStatus) bool {
	switch {
	case from.IsTerminal():
		return false
	case from == TaskStatusPending:
		return to == TaskStatusRunning
	case from == TaskStatusRunning:
		return to.IsTerminal()
	default:
		return false
	}
}
