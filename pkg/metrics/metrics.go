// Package metrics provides metrics collection for the report
// generation workflow. The Collector interface decouples the workflow
// from the backend; a Prometheus implementation ships alongside a
// no-op and an in-memory collector for tests.
package metrics

import (
	"net/http"
	"sync"
	"time"
)

// Collector is the interface for collecting and reporting metrics.
type Collector interface {
	// Counter operations
	CounterInc(name string, labels ...string)
	CounterAdd(name string, value float64, labels ...string)

	// Gauge operations
	GaugeSet(name string, value float64, labels ...string)
	GaugeInc(name string, labels ...string)
	GaugeDec(name string, labels ...string)

	// Histogram operations
	HistogramObserve(name string, value float64, labels ...string)

	// Handler returns an HTTP handler for a metrics endpoint
	Handler() http.Handler
}

// MetricType represents the type of metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// MetricDefinition defines a metric with its metadata.
type MetricDefinition struct {
	Name    string     `json:"name"`
	Type    MetricType `json:"type"`
	Help    string     `json:"help"`
	Labels  []string   `json:"labels,omitempty"`
	Buckets []float64  `json:"buckets,omitempty"` // For histograms
}

// Standard metrics for the report generation workflow.
var (
	ReportsGeneratedTotal = MetricDefinition{
		Name:   "reportgen_reports_generated_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of reports generated",
		Labels: []string{"format", "status"},
	}
	GenerationFailuresTotal = MetricDefinition{
		Name:   "reportgen_generation_failures_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of generation attempts that failed before commit",
		Labels: []string{"reason"},
	}
	GenerationDuration = MetricDefinition{
		Name:    "reportgen_generation_duration_seconds",
		Type:    MetricTypeHistogram,
		Help:    "Wall-clock duration of the generation sequence",
		Labels:  []string{"format"},
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}
	GenerationsInFlight = MetricDefinition{
		Name: "reportgen_generations_in_flight",
		Type: MetricTypeGauge,
		Help: "Number of generation sequences currently running",
	}
	DownloadsTotal = MetricDefinition{
		Name:   "reportgen_downloads_total",
		Type:   MetricTypeCounter,
		Help:   "Total number of report downloads recorded",
		Labels: []string{"format"},
	}
	ArtifactBytes = MetricDefinition{
		Name:    "reportgen_artifact_bytes",
		Type:    MetricTypeHistogram,
		Help:    "Size of rendered report artifacts in bytes",
		Labels:  []string{"format", "encoding"},
		Buckets: []float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 8 << 20},
	}
)

// Definitions returns all standard workflow metrics.
func Definitions() []MetricDefinition {
	return []MetricDefinition{
		ReportsGeneratedTotal,
		GenerationFailuresTotal,
		GenerationDuration,
		GenerationsInFlight,
		DownloadsTotal,
		ArtifactBytes,
	}
}

// NopCollector is a no-op metrics collector that discards all metrics.
type NopCollector struct{}

func (c *NopCollector) CounterInc(name string, labels ...string)                      {}
func (c *NopCollector) CounterAdd(name string, value float64, labels ...string)       {}
func (c *NopCollector) GaugeSet(name string, value float64, labels ...string)         {}
func (c *NopCollector) GaugeInc(name string, labels ...string)                        {}
func (c *NopCollector) GaugeDec(name string, labels ...string)                        {}
func (c *NopCollector) HistogramObserve(name string, value float64, labels ...string) {}
func (c *NopCollector) Handler() http.Handler                                         { return http.NotFoundHandler() }

// InMemoryCollector stores metrics in memory for testing purposes.
type InMemoryCollector struct {
	mu         sync.RWMutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewInMemoryCollector creates a new in-memory metrics collector.
func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (c *InMemoryCollector) key(name string, labels []string) string {
	key := name
	for i := 0; i+1 < len(labels); i += 2 {
		key += "," + labels[i] + "=" + labels[i+1]
	}
	return key
}

func (c *InMemoryCollector) CounterInc(name string, labels ...string) {
	c.CounterAdd(name, 1, labels...)
}

func (c *InMemoryCollector) CounterAdd(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[c.key(name, labels)] += value
}

func (c *InMemoryCollector) GaugeSet(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)] = value
}

func (c *InMemoryCollector) GaugeInc(name string, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)]++
}

func (c *InMemoryCollector) GaugeDec(name string, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[c.key(name, labels)]--
}

func (c *InMemoryCollector) HistogramObserve(name string, value float64, labels ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(name, labels)
	c.histograms[key] = append(c.histograms[key], value)
}

func (c *InMemoryCollector) Handler() http.Handler {
	return http.NotFoundHandler()
}

// GetCounter returns the value of a counter.
func (c *InMemoryCollector) GetCounter(name string, labels ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[c.key(name, labels)]
}

// GetGauge returns the value of a gauge.
func (c *InMemoryCollector) GetGauge(name string, labels ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gauges[c.key(name, labels)]
}

// GetHistogram returns all observations of a histogram.
func (c *InMemoryCollector) GetHistogram(name string, labels ...string) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.histograms[c.key(name, labels)]
}

// Timer is a helper for timing operations and recording to histograms.
type Timer struct {
	start     time.Time
	collector Collector
	name      string
	labels    []string
}

// NewTimer creates a new timer that will record to the given histogram.
func NewTimer(collector Collector, name string, labels ...string) *Timer {
	return &Timer{
		start:     time.Now(),
		collector: collector,
		name:      name,
		labels:    labels,
	}
}

// ObserveDuration records the duration since the timer was created.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	t.collector.HistogramObserve(t.name, d.Seconds(), t.labels...)
	return d
}

var (
	_ Collector = (*NopCollector)(nil)
	_ Collector = (*InMemoryCollector)(nil)
)
