package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Snapshot is a point-in-time view of a spellchecker.
type Snapshot struct {
	Pending   int
	Running   int
	Completed int64
	Failed    int64
	Rejected  int64

	// PendingReplies counts finished tasks whose reply has not run yet
	PendingReplies int

	DictionaryLoaded     bool
	DictionaryGeneration uint64
	DictionaryReleases   int64
	ActiveLeases         int64
}

// SnapshotFunc returns the current snapshot. It is called on every scrape.
type SnapshotFunc func() Snapshot

// SnapshotCollector exports a Snapshot as constant metrics at scrape time, so
// the values are always current and nothing polls in the background.
type SnapshotCollector struct {
	snapshot SnapshotFunc

	tasks          *prom.Desc
	tasksTotal     *prom.Desc
	rejected       *prom.Desc
	pendingReplies *prom.Desc
	loaded         *prom.Desc
	generation     *prom.Desc
	releases       *prom.Desc
	leases         *prom.Desc
}

// NewSnapshotCollector creates a collector for fn and registers it.
func NewSnapshotCollector(namespace string, reg prom.Registerer, fn SnapshotFunc) (*SnapshotCollector, error) {
	if namespace == "" {
		namespace = "spellcheck"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	c := &SnapshotCollector{
		snapshot: fn,
		tasks: prom.NewDesc(prom.BuildFQName(namespace, "", "tasks"),
			"Tasks accepted and not yet finished, by state.", []string{"state"}, nil),
		tasksTotal: prom.NewDesc(prom.BuildFQName(namespace, "", "tasks_finished_total"),
			"Tasks finished since start, by outcome.", []string{"status"}, nil),
		rejected: prom.NewDesc(prom.BuildFQName(namespace, "", "tasks_rejected_total"),
			"Submissions refused since start.", nil, nil),
		pendingReplies: prom.NewDesc(prom.BuildFQName(namespace, "", "pending_replies"),
			"Finished tasks waiting for the controlling goroutine.", nil, nil),
		loaded: prom.NewDesc(prom.BuildFQName(namespace, "dictionary", "loaded"),
			"Whether a dictionary is loaded (1) or not (0).", nil, nil),
		generation: prom.NewDesc(prom.BuildFQName(namespace, "dictionary", "generation"),
			"Identifier of the loaded dictionary generation.", nil, nil),
		releases: prom.NewDesc(prom.BuildFQName(namespace, "dictionary", "releases_total"),
			"Dictionary generations released since start.", nil, nil),
		leases: prom.NewDesc(prom.BuildFQName(namespace, "dictionary", "active_leases"),
			"Reads currently holding the dictionary.", nil, nil),
	}

	if _, err := registerCollector(reg, prom.Collector(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe implements prometheus.Collector.
func (c *SnapshotCollector) Describe(ch chan<- *prom.Desc) {
	ch <- c.tasks
	ch <- c.tasksTotal
	ch <- c.rejected
	ch <- c.pendingReplies
	ch <- c.loaded
	ch <- c.generation
	ch <- c.releases
	ch <- c.leases
}

// Collect implements prometheus.Collector.
func (c *SnapshotCollector) Collect(ch chan<- prom.Metric) {
	s := c.snapshot()

	loaded := 0.0
	if s.DictionaryLoaded {
		loaded = 1
	}

	ch <- prom.MustNewConstMetric(c.tasks, prom.GaugeValue, float64(s.Pending), "pending")
	ch <- prom.MustNewConstMetric(c.tasks, prom.GaugeValue, float64(s.Running), "running")
	ch <- prom.MustNewConstMetric(c.tasksTotal, prom.CounterValue, float64(s.Completed), "completed")
	ch <- prom.MustNewConstMetric(c.tasksTotal, prom.CounterValue, float64(s.Failed), "failed")
	ch <- prom.MustNewConstMetric(c.rejected, prom.CounterValue, float64(s.Rejected))
	ch <- prom.MustNewConstMetric(c.pendingReplies, prom.GaugeValue, float64(s.PendingReplies))
	ch <- prom.MustNewConstMetric(c.loaded, prom.GaugeValue, loaded)
	ch <- prom.MustNewConstMetric(c.generation, prom.GaugeValue, float64(s.DictionaryGeneration))
	ch <- prom.MustNewConstMetric(c.releases, prom.CounterValue, float64(s.DictionaryReleases))
	ch <- prom.MustNewConstMetric(c.leases, prom.GaugeValue, float64(s.ActiveLeases))
}
