package bench

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Metrics collects evaluation timings for a bench run. The bench loop is
// single-goroutine, so no locking is needed.
type Metrics struct {
	iterations int64
	failures   int64

	// Evaluation times in microseconds
	histogram *hdrhistogram.Histogram

	startTime time.Time
	endTime   time.Time
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Start marks the beginning of the measured window
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the measured window
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// Record records one suite evaluation
func (m *Metrics) Record(duration time.Duration, failed bool) {
	m.iterations++
	if failed {
		m.failures++
	}

	us := duration.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > 60_000_000 {
		us = 60_000_000
	}
	_ = m.histogram.RecordValue(us)
}

// Summary is the final result of the measured window
type Summary struct {
	Duration   time.Duration
	Iterations int64
	Failures   int64
	PerSecond  float64

	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	perSecond := float64(0)
	if duration.Seconds() > 0 {
		perSecond = float64(m.iterations) / duration.Seconds()
	}

	return &Summary{
		Duration:   duration,
		Iterations: m.iterations,
		Failures:   m.failures,
		PerSecond:  perSecond,
		P50:        time.Duration(m.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:        time.Duration(m.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:        time.Duration(m.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Min:        time.Duration(m.histogram.Min()) * time.Microsecond,
		Max:        time.Duration(m.histogram.Max()) * time.Microsecond,
		Mean:       time.Duration(m.histogram.Mean()) * time.Microsecond,
		StdDev:     time.Duration(m.histogram.StdDev()) * time.Microsecond,
	}
}

// CurrentStats returns statistics for the in-progress display
type CurrentStats struct {
	Elapsed    time.Duration
	Iterations int64
	Failures   int64
	P50        time.Duration
	P95        time.Duration
}

// GetCurrentStats returns current statistics
func (m *Metrics) GetCurrentStats() CurrentStats {
	return CurrentStats{
		Elapsed:    time.Since(m.startTime),
		Iterations: m.iterations,
		Failures:   m.failures,
		P50:        time.Duration(m.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:        time.Duration(m.histogram.ValueAtQuantile(95)) * time.Microsecond,
	}
}

// EvaluateThresholds evaluates the thresholds against the summary
func EvaluateThresholds(summary *Summary, t Thresholds) []ThresholdResult {
	var results []ThresholdResult

	check := func(name string, limit, actual time.Duration) {
		if limit <= 0 {
			return
		}
		results = append(results, ThresholdResult{
			Name:     name,
			Passed:   actual <= limit,
			Expected: "< " + limit.String(),
			Actual:   actual.String(),
		})
	}

	check("p50", t.P50, summary.P50)
	check("p95", t.P95, summary.P95)
	check("p99", t.P99, summary.P99)
	check("max", t.Max, summary.Max)
	check("mean", t.Mean, summary.Mean)

	return results
}
