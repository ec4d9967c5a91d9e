package bench

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/sheetspec/sheetspec/packages/core/runner"
)

// Runner executes bench runs by evaluating a suite repeatedly
type Runner struct {
	config   *Config
	runner   *runner.Runner
	metrics  *Metrics
	reporter *Reporter
	progress rate.Sometimes
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithReporter sets the reporter
func WithReporter(reporter *Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// WithRunnerConfig sets the suite runner configuration
func WithRunnerConfig(cfg *runner.Config) RunnerOption {
	return func(r *Runner) {
		r.runner = runner.NewRunner(cfg)
	}
}

// NewRunner creates a new bench runner
func NewRunner(config *Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		config:   config,
		metrics:  NewMetrics(),
		progress: rate.Sometimes{Interval: 500 * time.Millisecond},
	}

	for _, opt := range opts {
		opt(r)
	}

	// Create defaults if not provided
	if r.runner == nil {
		r.runner = runner.NewRunner(nil)
	}

	if r.reporter == nil {
		r.reporter = NewReporter()
	}

	return r
}

// Result holds the final result of a bench run
type Result struct {
	Summary    *Summary
	Thresholds []ThresholdResult
	Passed     bool
}

// HasThresholdFailures returns true if any thresholds failed
func (r *Result) HasThresholdFailures() bool {
	for _, tr := range r.Thresholds {
		if !tr.Passed {
			return true
		}
	}
	return false
}

// Run evaluates the suite at path repeatedly until the iteration or
// duration bound is reached.
func (b *Runner) Run(ctx context.Context, path string) (*Result, error) {
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	b.reporter.Header(path, b.config)

	// Warmup evaluations are discarded; they also surface suite errors
	// before the measured window starts.
	for i := 0; i < b.config.Warmup; i++ {
		if _, err := b.runner.RunFile(path); err != nil {
			return nil, fmt.Errorf("warmup evaluation failed: %w", err)
		}
	}

	var limiter *rate.Limiter
	if b.config.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.config.Rate), 1)
	}

	if b.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Duration)
		defer cancel()
	}

	b.metrics.Start()

	for i := 0; b.keepGoing(i); i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		} else if ctx.Err() != nil {
			break
		}

		start := time.Now()
		result, err := b.runner.RunFile(path)
		elapsed := time.Since(start)

		if err != nil {
			b.metrics.Stop()
			b.reporter.ClearProgress()
			return nil, fmt.Errorf("evaluation %d failed: %w", i+1, err)
		}

		b.metrics.Record(elapsed, result.Failed > 0)

		b.progress.Do(func() {
			b.reporter.Progress(b.metrics.GetCurrentStats())
		})
	}

	b.metrics.Stop()
	b.reporter.ClearProgress()

	summary := b.metrics.GetSummary()
	var thresholdResults []ThresholdResult
	if b.config.Thresholds.HasThresholds() {
		thresholdResults = EvaluateThresholds(summary, b.config.Thresholds)
	}

	b.reporter.Summary(summary, thresholdResults)

	passed := true
	for _, tr := range thresholdResults {
		if !tr.Passed {
			passed = false
			break
		}
	}

	return &Result{
		Summary:    summary,
		Thresholds: thresholdResults,
		Passed:     passed,
	}, nil
}

func (b *Runner) keepGoing(done int) bool {
	if b.config.Iterations > 0 && done >= b.config.Iterations {
		return false
	}
	// With no iteration bound the loop runs until the duration-derived
	// context expires.
	return true
}
