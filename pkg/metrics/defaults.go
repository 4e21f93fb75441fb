package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"k8s.io/apimachinery/pkg/util/wait"
	klog "k8s.io/klog/v2"
)

// DefaultCollectInterval is the default interval of DefaultCollector.
const DefaultCollectInterval = 10 * time.Second

// DefaultCollector periodically collects the standard Go runtime and
// process metrics. Snapshots expose the values of the most recent
// collection.
type DefaultCollector struct {
	interval time.Duration
	source   prometheus.Gatherer

	mutex    sync.RWMutex
	families []*dto.MetricFamily
}

// let compiler verify interface compliance
var _ prometheus.Gatherer = (*DefaultCollector)(nil)

// NewDefaultCollector creates a collector for the standard Go runtime and
// process metrics and performs the first collection.
// A non-positive interval selects DefaultCollectInterval.
func NewDefaultCollector(interval time.Duration) *DefaultCollector {
	source := prometheus.NewRegistry()
	source.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newDefaultCollector(interval, source)
}

func newDefaultCollector(interval time.Duration, source prometheus.Gatherer) *DefaultCollector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	c := &DefaultCollector{
		interval: interval,
		source:   source,
	}
	c.collect(context.Background())
	return c
}

// Interval returns the collection interval.
func (c *DefaultCollector) Interval() time.Duration {
	return c.interval
}

// Run collects the metrics every interval until ctx is done.
func (c *DefaultCollector) Run(ctx context.Context) {
	klog.V(2).InfoS("Starting default metrics collection", "interval", c.interval)
	wait.UntilWithContext(ctx, c.collect, c.interval)
	klog.V(2).InfoS("Stopped default metrics collection")
}

func (c *DefaultCollector) collect(ctx context.Context) {
	families, err := c.source.Gather()
	if err != nil {
		// Gather returns whatever could be collected together with the error.
		klog.FromContext(ctx).Error(err, "Default metrics collection incomplete")
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.families = families
}

// Names returns the names of the metric families collected last.
func (c *DefaultCollector) Names() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	names := make([]string, 0, len(c.families))
	for _, family := range c.families {
		names = append(names, family.GetName())
	}
	return names
}

// Gather returns the metric families collected last.
func (c *DefaultCollector) Gather() ([]*dto.MetricFamily, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.families, nil
}
