// Package metrics provides metrics export functionality for sheetspec runs.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Metric represents a single metric data point
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Type      MetricType        `json:"type"`
}

// MetricType represents the type of metric
type MetricType string

const (
	Counter   MetricType = "counter"
	Gauge     MetricType = "gauge"
	Histogram MetricType = "histogram"
)

// TestMetrics represents metrics collected from a single test
type TestMetrics struct {
	TestName       string    `json:"test_name"`
	File           string    `json:"file"`
	Module         string    `json:"module"`
	DurationMs     float64   `json:"duration_ms"`
	Passed         bool      `json:"passed"`
	Skipped        bool      `json:"skipped"`
	AssertionCount int       `json:"assertion_count"`
	FailedCount    int       `json:"failed_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// AggregateMetrics represents aggregated metrics from a whole run
type AggregateMetrics struct {
	TotalTests      int64                       `json:"total_tests"`
	PassedCount     int64                       `json:"passed_count"`
	FailedCount     int64                       `json:"failed_count"`
	SkippedCount    int64                       `json:"skipped_count"`
	AssertionCount  int64                       `json:"assertion_count"`
	TotalDurationMs float64                     `json:"total_duration_ms"`
	MinDurationMs   float64                     `json:"min_duration_ms"`
	MaxDurationMs   float64                     `json:"max_duration_ms"`
	AvgDurationMs   float64                     `json:"avg_duration_ms"`
	P50DurationMs   float64                     `json:"p50_duration_ms"`
	P95DurationMs   float64                     `json:"p95_duration_ms"`
	P99DurationMs   float64                     `json:"p99_duration_ms"`
	ByModule        map[string]*ModuleAggregate `json:"by_module"`
}

// ModuleAggregate represents aggregated metrics for a single module
type ModuleAggregate struct {
	Name          string  `json:"name"`
	TotalTests    int64   `json:"total_tests"`
	PassedCount   int64   `json:"passed_count"`
	FailedCount   int64   `json:"failed_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	MinDurationMs float64 `json:"min_duration_ms"`
	MaxDurationMs float64 `json:"max_duration_ms"`
}

// Exporter is the interface for metrics exporters
type Exporter interface {
	// Export exports metrics to the target destination
	Export(metrics *AggregateMetrics) error

	// ExportSingle exports a single test metric
	ExportSingle(metric *TestMetrics) error

	// Close closes the exporter and flushes any buffered data
	Close() error
}

// Collector collects metrics from test runs
type Collector struct {
	metrics   []*TestMetrics
	aggregate *AggregateMetrics
	durations *hdrhistogram.Histogram
	exporters []Exporter
}

// NewCollector creates a new metrics collector
func NewCollector(exporters ...Exporter) *Collector {
	return &Collector{
		metrics:   make([]*TestMetrics, 0),
		exporters: exporters,
		durations: hdrhistogram.New(1, 60_000_000, 3),
		aggregate: &AggregateMetrics{
			ByModule: make(map[string]*ModuleAggregate),
		},
	}
}

// Record records a test metric
func (c *Collector) Record(m *TestMetrics) {
	c.metrics = append(c.metrics, m)
	c.updateAggregate(m)

	// Export to all exporters
	for _, exp := range c.exporters {
		_ = exp.ExportSingle(m)
	}
}

func (c *Collector) updateAggregate(m *TestMetrics) {
	c.aggregate.TotalTests++
	c.aggregate.AssertionCount += int64(m.AssertionCount)

	// Skipped tests carry no duration, so timing only counts executed ones.
	if m.Skipped {
		c.aggregate.SkippedCount++
		return
	}
	if m.Passed {
		c.aggregate.PassedCount++
	} else {
		c.aggregate.FailedCount++
	}

	c.aggregate.TotalDurationMs += m.DurationMs
	_ = c.durations.RecordValue(int64(m.DurationMs * 1000))

	executed := c.aggregate.PassedCount + c.aggregate.FailedCount
	if executed == 1 {
		c.aggregate.MinDurationMs = m.DurationMs
		c.aggregate.MaxDurationMs = m.DurationMs
	} else {
		if m.DurationMs < c.aggregate.MinDurationMs {
			c.aggregate.MinDurationMs = m.DurationMs
		}
		if m.DurationMs > c.aggregate.MaxDurationMs {
			c.aggregate.MaxDurationMs = m.DurationMs
		}
	}
	c.aggregate.AvgDurationMs = c.aggregate.TotalDurationMs / float64(executed)

	// Per-module aggregates
	if _, ok := c.aggregate.ByModule[m.Module]; !ok {
		c.aggregate.ByModule[m.Module] = &ModuleAggregate{
			Name:          m.Module,
			MinDurationMs: m.DurationMs,
			MaxDurationMs: m.DurationMs,
		}
	}

	ma := c.aggregate.ByModule[m.Module]
	ma.TotalTests++
	if m.Passed {
		ma.PassedCount++
	} else {
		ma.FailedCount++
	}
	if m.DurationMs < ma.MinDurationMs {
		ma.MinDurationMs = m.DurationMs
	}
	if m.DurationMs > ma.MaxDurationMs {
		ma.MaxDurationMs = m.DurationMs
	}
	ma.AvgDurationMs = (ma.AvgDurationMs*float64(ma.TotalTests-1) + m.DurationMs) / float64(ma.TotalTests)
}

// GetAggregate returns the aggregated metrics with duration percentiles
// filled in from the recorded histogram.
func (c *Collector) GetAggregate() *AggregateMetrics {
	if c.durations.TotalCount() > 0 {
		c.aggregate.P50DurationMs = float64(c.durations.ValueAtQuantile(50)) / 1000.0
		c.aggregate.P95DurationMs = float64(c.durations.ValueAtQuantile(95)) / 1000.0
		c.aggregate.P99DurationMs = float64(c.durations.ValueAtQuantile(99)) / 1000.0
	}
	return c.aggregate
}

// Flush exports all aggregated metrics
func (c *Collector) Flush() error {
	aggregate := c.GetAggregate()
	for _, exp := range c.exporters {
		if err := exp.Export(aggregate); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all exporters
func (c *Collector) Close() error {
	for _, exp := range c.exporters {
		if err := exp.Close(); err != nil {
			return err
		}
	}
	return nil
}
