// Package bench provides repeated whole-suite evaluation for measuring
// wall-time stability of stylesheet test runs. It supports iteration and
// duration bounds, rate-limited pacing, and latency threshold evaluation
// with detailed reporting.
package bench

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Config holds all configuration for a bench run
type Config struct {
	Iterations int           // number of suite evaluations (0 = bound by Duration)
	Duration   time.Duration // wall-clock bound (0 = bound by Iterations)
	Rate       float64       // evaluations per second (0 = unpaced)
	Warmup     int           // evaluations discarded before recording
	Thresholds Thresholds    // pass/fail thresholds
}

// Thresholds defines pass/fail criteria for a bench run
type Thresholds struct {
	P50  time.Duration // 50th percentile evaluation time
	P95  time.Duration // 95th percentile evaluation time
	P99  time.Duration // 99th percentile evaluation time
	Max  time.Duration // maximum allowed evaluation time
	Mean time.Duration // mean evaluation time
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Iterations: 10,
		Warmup:     1,
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Iterations <= 0 && c.Duration <= 0 {
		return fmt.Errorf("either iterations or duration must be positive")
	}

	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}

	if c.Warmup < 0 {
		return fmt.Errorf("warmup cannot be negative")
	}

	return nil
}

// ParseThresholds parses a threshold string like "p95<20ms,mean<10ms"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds

	if s == "" {
		return t, nil
	}

	parts := strings.Split(s, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}

	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	// Match patterns like "p95<20ms" or "mean<=10ms"
	re := regexp.MustCompile(`^(\w+)\s*([<>]=?)\s*(.+)$`)
	matches := re.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	op := matches[2]
	valueStr := matches[3]

	if op != "<" && op != "<=" {
		return fmt.Errorf("%s threshold must use < or <=", metric)
	}

	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %s", metric, valueStr)
	}

	switch metric {
	case "p50":
		t.P50 = d
	case "p95":
		t.P95 = d
	case "p99":
		t.P99 = d
	case "max":
		t.Max = d
	case "mean", "avg":
		t.Mean = d
	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	return nil
}

// HasThresholds returns true if any thresholds are configured
func (t *Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.Max > 0 || t.Mean > 0
}

// ThresholdResult holds the result of evaluating a threshold
type ThresholdResult struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
}
