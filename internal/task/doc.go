// Package task runs spellcheck work off the controlling goroutine.
//
// Tasks are submitted to a Dispatcher, which places them on a bounded
// TaskQueue consumed by a WorkerPool. When a task finishes, its outcome is
// posted to a CompletionQueue that only the controlling goroutine drains, so
// every reply callback runs on that one goroutine, exactly once per accepted
// task.
package task
