package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Kind is the kind of a metric instrument.
type Kind int

// Instrument kinds
const (
	KindCounter Kind = iota + 1
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	default:
		return "untyped"
	}
}

// Opts describes an instrument to be registered.
type Opts struct {
	// Name is the unique name of the instrument.
	Name string

	// Kind is the kind of the instrument.
	Kind Kind

	// Help is the help text exported with the instrument.
	Help string

	// LabelNames is the ordered list of label names. Every observation
	// must provide one value per label name in this order.
	LabelNames []string

	// Buckets are the upper bounds of the histogram buckets in strictly
	// ascending order. Only used for histograms. If empty,
	// prometheus.DefBuckets is used.
	Buckets []float64
}

// instrument is the part common to all instrument kinds. It remembers
// the order in which label tuples have been observed first.
type instrument struct {
	opts Opts

	seriesMutex sync.Mutex
	series      map[string]int
}

func (i *instrument) init(opts Opts) {
	i.opts = opts
	i.series = make(map[string]int)
}

// Name returns the name of the instrument.
func (i *instrument) Name() string {
	return i.opts.Name
}

// LabelNames returns a copy of the declared label names.
func (i *instrument) LabelNames() []string {
	return append([]string(nil), i.opts.LabelNames...)
}

func (i *instrument) checkLabels(labelValues []string) error {
	if len(labelValues) != len(i.opts.LabelNames) {
		return &UnlabeledSeriesError{
			Name:       i.opts.Name,
			LabelNames: i.LabelNames(),
			Got:        len(labelValues),
		}
	}
	return nil
}

func (i *instrument) touch(labelValues []string) {
	key := seriesKey(labelValues)
	i.seriesMutex.Lock()
	defer i.seriesMutex.Unlock()
	if _, found := i.series[key]; !found {
		i.series[key] = len(i.series)
	}
}

// sortSeries orders the metrics of the given family by the time their
// label tuple has been observed first. Unknown tuples go last.
func (i *instrument) sortSeries(family *dto.MetricFamily) {
	i.seriesMutex.Lock()
	defer i.seriesMutex.Unlock()

	rank := func(m *dto.Metric) int {
		if r, found := i.series[i.metricKey(m)]; found {
			return r
		}
		return len(i.series)
	}
	sort.SliceStable(family.Metric, func(a, b int) bool {
		return rank(family.Metric[a]) < rank(family.Metric[b])
	})
}

// metricKey rebuilds the series key of a gathered metric. Gathered label
// pairs are sorted by name, so they are mapped back to declaration order.
func (i *instrument) metricKey(m *dto.Metric) string {
	byName := make(map[string]string, len(m.GetLabel()))
	for _, pair := range m.GetLabel() {
		byName[pair.GetName()] = pair.GetValue()
	}
	values := make([]string, len(i.opts.LabelNames))
	for idx, name := range i.opts.LabelNames {
		values[idx] = byName[name]
	}
	return seriesKey(values)
}

func seriesKey(labelValues []string) string {
	return strings.Join(labelValues, "\xff")
}

// Counter is a monotonically increasing instrument.
type Counter struct {
	instrument
	vec *prometheus.CounterVec
}

// Inc increments the series identified by labelValues by one.
// A series observed the first time starts at zero.
func (c *Counter) Inc(labelValues ...string) error {
	if err := c.checkLabels(labelValues); err != nil {
		return err
	}
	c.touch(labelValues)
	m, err := c.vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return errors.Wrapf(err, "metric %q", c.opts.Name)
	}
	m.Inc()
	return nil
}

// Gauge is an instrument holding the most recent value set.
type Gauge struct {
	instrument
	vec *prometheus.GaugeVec
}

// Set overwrites the current value of the series identified by
// labelValues. Unlabeled gauges are set without label values.
func (g *Gauge) Set(value float64, labelValues ...string) error {
	if err := g.checkLabels(labelValues); err != nil {
		return err
	}
	g.touch(labelValues)
	m, err := g.vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return errors.Wrapf(err, "metric %q", g.opts.Name)
	}
	m.Set(value)
	return nil
}

// Histogram counts observations in cumulative buckets and keeps the
// sum and the count of all observations.
type Histogram struct {
	instrument
	vec *prometheus.HistogramVec
}

// Buckets returns a copy of the bucket upper bounds.
func (h *Histogram) Buckets() []float64 {
	return append([]float64(nil), h.opts.Buckets...)
}

// Observe adds a single observation to the series identified by
// labelValues.
func (h *Histogram) Observe(value float64, labelValues ...string) error {
	if err := h.checkLabels(labelValues); err != nil {
		return err
	}
	if value < 0 {
		return errors.Wrapf(ErrNegativeObservation, "metric %q: value %v", h.opts.Name, value)
	}
	h.touch(labelValues)
	m, err := h.vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return errors.Wrapf(err, "metric %q", h.opts.Name)
	}
	m.Observe(value)
	return nil
}
