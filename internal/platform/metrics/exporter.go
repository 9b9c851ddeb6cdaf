package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/spellcheck/internal/task"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// Exporter adapts task.Metrics to Prometheus collectors.
type Exporter struct {
	taskSubmittedTotal  *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
	queueDepth          prom.Gauge
}

var _ task.Metrics = (*Exporter)(nil)

// NewExporter creates and registers the dispatcher collectors.
func NewExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if namespace == "" {
		namespace = "spellcheck"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.ExponentialBuckets(0.0001, 4, 10)
	}

	submittedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_submitted_total",
		Help:      "Total number of tasks accepted by the dispatcher.",
	}, []string{"type"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of tasks refused at submission.",
	}, []string{"type", "reason"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"type", "status"})
	depth := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Tasks waiting for a worker.",
	})

	var err error
	if submittedVec, err = registerCollector(reg, submittedVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if depth, err = registerCollector(reg, depth); err != nil {
		return nil, err
	}

	return &Exporter{
		taskSubmittedTotal:  submittedVec,
		taskRejectedTotal:   rejectedVec,
		taskDurationSeconds: durationVec,
		queueDepth:          depth,
	}, nil
}

// TaskSubmitted counts an accepted task.
func (m *Exporter) TaskSubmitted(taskType string) {
	if m == nil {
		return
	}
	m.taskSubmittedTotal.WithLabelValues(normalizeLabel(taskType, "unknown")).Inc()
}

// TaskRejected counts a refused submission.
func (m *Exporter) TaskRejected(taskType string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(taskType, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// TaskFinished records how long a task ran and how it ended.
func (m *Exporter) TaskFinished(taskType string, status task.TaskStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(taskType, "unknown"), normalizeLabel(string(status), "unknown")).Observe(elapsed.Seconds())
}

// QueueDepth records the current queue length.
func (m *Exporter) QueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
