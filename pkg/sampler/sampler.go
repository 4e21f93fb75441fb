package sampler

import (
	rtmetrics "runtime/metrics"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
	klog "k8s.io/klog/v2"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/mernshop/shop-backend/pkg/sampler Sampler

// heapObjectsMetric is the runtime metric of the memory occupied by live
// and not yet swept heap objects.
const heapObjectsMetric = "/memory/classes/heap/objects:bytes"

// Sampler reads resource usage counters of the current process.
// Sampling must not block.
type Sampler interface {
	// CPUPercent returns the CPU time consumed since process start
	// relative to the process uptime in percent. This is an average over
	// the whole lifetime of the process, not the current load.
	// Values above 100 are possible on multi-core machines.
	CPUPercent() float64

	// MemoryBytes returns the number of bytes of the live heap.
	MemoryBytes() uint64
}

type processSampler struct {
	clock     clock.Clock
	startedAt time.Time
	cpuTime   func() (time.Duration, error)
	heapBytes func() uint64
}

// New returns a Sampler for the current process.
// If clk is nil, the real clock is used.
func New(clk clock.Clock) Sampler {
	if clk == nil {
		clk = clock.New()
	}
	startedAt, err := processStartTime()
	if err != nil {
		klog.V(3).InfoS("Cannot read process start time, using sampler creation time instead", "err", err)
		startedAt = clk.Now()
	}
	return &processSampler{
		clock:     clk,
		startedAt: startedAt,
		cpuTime:   rusageCPUTime,
		heapBytes: liveHeapBytes,
	}
}

func (s *processSampler) CPUPercent() float64 {
	cpu, err := s.cpuTime()
	if err != nil {
		klog.V(4).InfoS("Cannot read CPU time", "err", err)
		return 0
	}
	uptime := s.clock.Since(s.startedAt)
	if uptime <= 0 {
		return 0
	}
	return float64(cpu) / float64(uptime) * 100
}

func (s *processSampler) MemoryBytes() uint64 {
	return s.heapBytes()
}

// processStartTime reads the start time of the current process from the
// proc filesystem.
func processStartTime() (time.Time, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "cannot open proc filesystem")
	}
	proc, err := fs.Self()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "cannot access own process")
	}
	stat, err := proc.Stat()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "cannot read process stat")
	}
	start, err := stat.StartTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "cannot compute process start time")
	}
	return time.Unix(0, int64(start*float64(time.Second))), nil
}

// rusageCPUTime returns the user and system CPU time consumed by the
// current process.
func rusageCPUTime() (time.Duration, error) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, errors.Wrap(err, "getrusage failed")
	}
	return time.Duration(usage.Utime.Nano() + usage.Stime.Nano()), nil
}

func liveHeapBytes() uint64 {
	sample := []rtmetrics.Sample{{Name: heapObjectsMetric}}
	rtmetrics.Read(sample)
	if sample[0].Value.Kind() != rtmetrics.KindUint64 {
		return 0
	}
	return sample[0].Value.Uint64()
}
