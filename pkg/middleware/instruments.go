package middleware

import (
	"github.com/mernshop/shop-backend/pkg/metrics"
)

// Names of the instruments registered by NewInstruments.
const (
	RequestDurationName = "http_request_duration_ms"
	RequestsName        = "http_requests_total"
	ErrorsName          = "http_errors_total"
	CPUUsageName        = "cpu_usage_percent"
	MemoryUsageName     = "memory_usage_bytes"
)

// requestDurationBuckets are the bucket upper bounds of the request
// duration histogram in milliseconds.
var requestDurationBuckets = []float64{0.10, 5, 15, 50, 100, 200, 300, 400, 500}

// Instruments are the metric instruments updated by the middleware chain.
type Instruments struct {
	// RequestDuration observes the duration of completed requests in
	// whole milliseconds. Labels: method, route, code.
	RequestDuration *metrics.Histogram

	// Requests counts completed requests. Labels: method, route, code.
	Requests *metrics.Counter

	// Errors counts failed requests. Labels: method, route.
	Errors *metrics.Counter

	// CPUUsage is the CPU usage sampled with the most recent request.
	CPUUsage *metrics.Gauge

	// MemoryUsage is the heap usage sampled with the most recent request.
	MemoryUsage *metrics.Gauge
}

// NewInstruments registers the HTTP instruments in the given registry.
func NewInstruments(registry *metrics.Registry) (*Instruments, error) {
	var (
		instruments Instruments
		err         error
	)
	if instruments.RequestDuration, err = registry.RegisterHistogram(
		RequestDurationName,
		"Duration of HTTP requests in ms",
		requestDurationBuckets,
		"method", "route", "code",
	); err != nil {
		return nil, err
	}
	if instruments.Requests, err = registry.RegisterCounter(
		RequestsName,
		"Total number of HTTP requests",
		"method", "route", "code",
	); err != nil {
		return nil, err
	}
	if instruments.Errors, err = registry.RegisterCounter(
		ErrorsName,
		"Total number of HTTP errors",
		"method", "route",
	); err != nil {
		return nil, err
	}
	if instruments.CPUUsage, err = registry.RegisterGauge(
		CPUUsageName,
		"Current CPU usage as a percentage",
	); err != nil {
		return nil, err
	}
	if instruments.MemoryUsage, err = registry.RegisterGauge(
		MemoryUsageName,
		"Current memory usage in bytes",
	); err != nil {
		return nil, err
	}
	return &instruments, nil
}
