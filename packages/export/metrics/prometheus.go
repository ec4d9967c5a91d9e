package metrics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// PrometheusExporter exports metrics in the Prometheus text exposition
// format, suitable for the node_exporter textfile collector. Samples carry
// no timestamps because the textfile collector rejects them.
type PrometheusExporter struct {
	aggregate *AggregateMetrics
	writer    io.Writer
	filePath  string
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithPrometheusWriter sets the output writer for Prometheus metrics
func WithPrometheusWriter(w io.Writer) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.writer = w
	}
}

// WithPrometheusFile sets the output file for Prometheus metrics
func WithPrometheusFile(path string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.filePath = path
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter
func NewPrometheusExporter(opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{
		aggregate: &AggregateMetrics{ByModule: make(map[string]*ModuleAggregate)},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Export exports aggregated metrics
func (p *PrometheusExporter) Export(metrics *AggregateMetrics) error {
	p.aggregate = metrics

	var buf bytes.Buffer
	p.writeMetrics(&buf)

	if p.filePath != "" {
		if err := os.WriteFile(p.filePath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	if p.writer != nil {
		if _, err := p.writer.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}

// ExportSingle is a no-op for the Prometheus exporter; it only emits
// aggregates.
func (p *PrometheusExporter) ExportSingle(metric *TestMetrics) error {
	return nil
}

func (p *PrometheusExporter) writeMetrics(w io.Writer) {
	fmt.Fprintf(w, "# HELP sheetspec_tests_total Total number of tests run\n")
	fmt.Fprintf(w, "# TYPE sheetspec_tests_total counter\n")
	fmt.Fprintf(w, "sheetspec_tests_total %d\n", p.aggregate.TotalTests)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sheetspec_tests_passed_total Total number of passing tests\n")
	fmt.Fprintf(w, "# TYPE sheetspec_tests_passed_total counter\n")
	fmt.Fprintf(w, "sheetspec_tests_passed_total %d\n", p.aggregate.PassedCount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sheetspec_tests_failed_total Total number of failing tests\n")
	fmt.Fprintf(w, "# TYPE sheetspec_tests_failed_total counter\n")
	fmt.Fprintf(w, "sheetspec_tests_failed_total %d\n", p.aggregate.FailedCount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sheetspec_tests_skipped_total Total number of skipped tests\n")
	fmt.Fprintf(w, "# TYPE sheetspec_tests_skipped_total counter\n")
	fmt.Fprintf(w, "sheetspec_tests_skipped_total %d\n", p.aggregate.SkippedCount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sheetspec_assertions_total Total number of assertions evaluated\n")
	fmt.Fprintf(w, "# TYPE sheetspec_assertions_total counter\n")
	fmt.Fprintf(w, "sheetspec_assertions_total %d\n", p.aggregate.AssertionCount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sheetspec_test_duration_ms Test duration in milliseconds\n")
	fmt.Fprintf(w, "# TYPE sheetspec_test_duration_ms gauge\n")
	fmt.Fprintf(w, "sheetspec_test_duration_ms{quantile=\"min\"} %.2f\n", p.aggregate.MinDurationMs)
	fmt.Fprintf(w, "sheetspec_test_duration_ms{quantile=\"max\"} %.2f\n", p.aggregate.MaxDurationMs)
	fmt.Fprintf(w, "sheetspec_test_duration_ms{quantile=\"avg\"} %.2f\n", p.aggregate.AvgDurationMs)
	if p.aggregate.P50DurationMs > 0 {
		fmt.Fprintf(w, "sheetspec_test_duration_ms{quantile=\"0.50\"} %.2f\n", p.aggregate.P50DurationMs)
	}
	if p.aggregate.P95DurationMs > 0 {
		fmt.Fprintf(w, "sheetspec_test_duration_ms{quantile=\"0.95\"} %.2f\n", p.aggregate.P95DurationMs)
	}
	if p.aggregate.P99DurationMs > 0 {
		fmt.Fprintf(w, "sheetspec_test_duration_ms{quantile=\"0.99\"} %.2f\n", p.aggregate.P99DurationMs)
	}
	fmt.Fprintln(w)

	// Per-module metrics
	if len(p.aggregate.ByModule) > 0 {
		fmt.Fprintf(w, "# HELP sheetspec_module_tests_total Tests per module\n")
		fmt.Fprintf(w, "# TYPE sheetspec_module_tests_total counter\n")

		// Sort module names for consistent output
		names := make([]string, 0, len(p.aggregate.ByModule))
		for name := range p.aggregate.ByModule {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ma := p.aggregate.ByModule[name]
			safeName := sanitizeLabel(name)
			fmt.Fprintf(w, "sheetspec_module_tests_total{module=\"%s\"} %d\n", safeName, ma.TotalTests)
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "# HELP sheetspec_module_duration_avg_ms Average test duration per module\n")
		fmt.Fprintf(w, "# TYPE sheetspec_module_duration_avg_ms gauge\n")
		for _, name := range names {
			ma := p.aggregate.ByModule[name]
			safeName := sanitizeLabel(name)
			fmt.Fprintf(w, "sheetspec_module_duration_avg_ms{module=\"%s\"} %.2f\n", safeName, ma.AvgDurationMs)
		}
	}
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// Close shuts down the exporter
func (p *PrometheusExporter) Close() error {
	return nil
}
