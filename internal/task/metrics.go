package task

import "time"

// Metrics receives dispatcher activity. Implementations must be safe for
// concurrent use; methods are called from submitting and worker goroutines.
type Metrics interface {
	TaskSubmitted(taskType string)
	TaskRejected(taskType string, reason string)
	TaskFinished(taskType string, status TaskStatus, elapsed time.Duration)
	QueueDepth(depth int)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) TaskSubmitted(string)                           {}
func (NopMetrics) TaskRejected(string, string)                    {}
func (NopMetrics) TaskFinished(string, TaskStatus, time.Duration) {}
func (NopMetrics) QueueDepth(int)                                 {}

var _ Metrics = NopMetrics{}
