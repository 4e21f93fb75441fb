package metrics

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// ContentType is the media type of the snapshots written by a Registry.
const ContentType = string(expfmt.FmtText)

// bucketLabel is reserved by the exposition format for histogram buckets.
const bucketLabel = "le"

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

// registered is implemented by all instrument kinds.
type registered interface {
	options() *Opts
	sortSeries(*dto.MetricFamily)
}

func (i *instrument) options() *Opts {
	return &i.opts
}

// Registry is a collection of named metric instruments.
// It is safe for concurrent use.
type Registry struct {
	mutex       sync.RWMutex
	prom        *prometheus.Registry
	names       []string
	instruments map[string]registered
	reserved    map[string]struct{}
	defaults    []prometheus.Gatherer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		prom:        prometheus.NewPedanticRegistry(),
		instruments: make(map[string]registered),
		reserved:    make(map[string]struct{}),
	}
}

// Register creates an instrument and adds it to the registry.
// A *DuplicateNameError is returned if the name is in use already.
func (r *Registry) Register(opts Opts) error {
	_, err := r.register(opts)
	return err
}

// MustRegister registers all given instruments and panics on the first
// failure.
func (r *Registry) MustRegister(opts ...Opts) {
	for _, o := range opts {
		if err := r.Register(o); err != nil {
			panic(err)
		}
	}
}

// RegisterCounter registers a counter and returns it.
func (r *Registry) RegisterCounter(name, help string, labelNames ...string) (*Counter, error) {
	inst, err := r.register(Opts{Name: name, Kind: KindCounter, Help: help, LabelNames: labelNames})
	if err != nil {
		return nil, err
	}
	return inst.(*Counter), nil
}

// RegisterGauge registers a gauge and returns it.
func (r *Registry) RegisterGauge(name, help string, labelNames ...string) (*Gauge, error) {
	inst, err := r.register(Opts{Name: name, Kind: KindGauge, Help: help, LabelNames: labelNames})
	if err != nil {
		return nil, err
	}
	return inst.(*Gauge), nil
}

// RegisterHistogram registers a histogram and returns it.
func (r *Registry) RegisterHistogram(name, help string, buckets []float64, labelNames ...string) (*Histogram, error) {
	inst, err := r.register(Opts{Name: name, Kind: KindHistogram, Help: help, LabelNames: labelNames, Buckets: buckets})
	if err != nil {
		return nil, err
	}
	return inst.(*Histogram), nil
}

func (r *Registry) register(opts Opts) (registered, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.taken(opts.Name) {
		return nil, &DuplicateNameError{Name: opts.Name}
	}
	opts.LabelNames = append([]string(nil), opts.LabelNames...)

	var (
		inst      registered
		collector prometheus.Collector
	)
	switch opts.Kind {
	case KindCounter:
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: opts.Name, Help: opts.Help}, opts.LabelNames)
		c := &Counter{vec: vec}
		c.init(opts)
		inst, collector = c, vec
	case KindGauge:
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: opts.Name, Help: opts.Help}, opts.LabelNames)
		g := &Gauge{vec: vec}
		g.init(opts)
		inst, collector = g, vec
	case KindHistogram:
		buckets, err := checkBuckets(opts)
		if err != nil {
			return nil, err
		}
		opts.Buckets = buckets
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: opts.Name, Help: opts.Help, Buckets: buckets}, opts.LabelNames)
		h := &Histogram{vec: vec}
		h.init(opts)
		inst, collector = h, vec
	default:
		return nil, errors.Errorf("metric %q: unsupported instrument kind %v", opts.Name, opts.Kind)
	}

	if err := r.prom.Register(collector); err != nil {
		if are := (prometheus.AlreadyRegisteredError{}); errors.As(err, &are) {
			return nil, &DuplicateNameError{Name: opts.Name}
		}
		return nil, errors.Wrapf(err, "cannot register metric %q", opts.Name)
	}

	if len(opts.LabelNames) == 0 {
		initUnlabeled(inst)
	}

	r.names = append(r.names, opts.Name)
	r.instruments[opts.Name] = inst
	return inst, nil
}

// initUnlabeled creates the single series of an unlabeled instrument so
// that it is exported with its zero value before the first update.
func initUnlabeled(inst registered) {
	switch i := inst.(type) {
	case *Counter:
		i.touch(nil)
		i.vec.WithLabelValues()
	case *Gauge:
		i.touch(nil)
		i.vec.WithLabelValues()
	case *Histogram:
		i.touch(nil)
		i.vec.WithLabelValues()
	}
}

func checkBuckets(opts Opts) ([]float64, error) {
	for _, name := range opts.LabelNames {
		if name == bucketLabel {
			return nil, errors.Errorf("metric %q: label name %q is reserved for histograms", opts.Name, bucketLabel)
		}
	}
	if len(opts.Buckets) == 0 {
		return append([]float64(nil), prometheus.DefBuckets...), nil
	}
	for i := 1; i < len(opts.Buckets); i++ {
		if opts.Buckets[i] <= opts.Buckets[i-1] {
			return nil, errors.Errorf(
				"metric %q: histogram buckets must be in strictly ascending order, got %v",
				opts.Name, opts.Buckets,
			)
		}
	}
	return append([]float64(nil), opts.Buckets...), nil
}

// taken must be called with the mutex held.
func (r *Registry) taken(name string) bool {
	if _, found := r.instruments[name]; found {
		return true
	}
	_, found := r.reserved[name]
	return found
}

// Counter returns the counter with the given name or nil if there is no
// such counter.
func (r *Registry) Counter(name string) *Counter {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	c, _ := r.instruments[name].(*Counter)
	return c
}

// Gauge returns the gauge with the given name or nil if there is no such
// gauge.
func (r *Registry) Gauge(name string) *Gauge {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	g, _ := r.instruments[name].(*Gauge)
	return g
}

// Histogram returns the histogram with the given name or nil if there is
// no such histogram.
func (r *Registry) Histogram(name string) *Histogram {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	h, _ := r.instruments[name].(*Histogram)
	return h
}

// IncludeDefaults adds the families of the given default collector to
// the snapshots of this registry. The names of these families are
// reserved afterwards.
func (r *Registry) IncludeDefaults(c *DefaultCollector) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	names := c.Names()
	for _, name := range names {
		if r.taken(name) {
			return &DuplicateNameError{Name: name}
		}
	}
	for _, name := range names {
		r.reserved[name] = struct{}{}
	}
	r.defaults = append(r.defaults, c)
	return nil
}

// Snapshot returns the text exposition of all instruments.
func (r *Registry) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteSnapshot(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshot writes the text exposition of all instruments to w.
// Instruments are written in registration order and the series of an
// instrument in the order their label tuples have been observed first.
// The families of included default collectors follow at the end.
func (r *Registry) WriteSnapshot(w io.Writer) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	families, err := r.prom.Gather()
	if err != nil {
		return errors.Wrap(err, "cannot gather metrics")
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, family := range families {
		byName[family.GetName()] = family
	}

	for _, name := range r.names {
		inst := r.instruments[name]
		family, found := byName[name]
		if !found {
			if err := writeHeader(w, inst.options()); err != nil {
				return err
			}
			continue
		}
		inst.sortSeries(family)
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Wrapf(err, "cannot write metric %q", name)
		}
	}

	for _, gatherer := range r.defaults {
		families, err := gatherer.Gather()
		if err != nil {
			return errors.Wrap(err, "cannot gather default metrics")
		}
		for _, family := range families {
			if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
				return errors.Wrapf(err, "cannot write metric %q", family.GetName())
			}
		}
	}
	return nil
}

// writeHeader writes the HELP and TYPE lines of an instrument that has
// no series yet.
func writeHeader(w io.Writer, opts *Opts) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n",
		opts.Name, helpEscaper.Replace(opts.Help),
		opts.Name, opts.Kind,
	)
	return errors.Wrapf(err, "cannot write metric %q", opts.Name)
}
