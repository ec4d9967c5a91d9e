package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/bench"
	"github.com/sheetspec/sheetspec/packages/core/runner"
)

var benchCmd = &cobra.Command{
	Use:   "bench <file>",
	Short: "Benchmark suite evaluation time",
	Long: `Repeatedly evaluate one suite file and report wall-time statistics.

Examples:
  sheetspec bench buttons.sheet.yaml
  sheetspec bench buttons.sheet.yaml --iterations 100
  sheetspec bench buttons.sheet.yaml --duration 30s --rate 50
  sheetspec bench buttons.sheet.yaml --threshold "p95<20ms,mean<10ms"`,
	Args: exactArgs(1),
	RunE: benchCommand,
}

var (
	benchIterationsFlag int
	benchDurationFlag   string
	benchRateFlag       float64
	benchWarmupFlag     int
	benchThresholdFlag  string
	benchJSONFlag       bool
	benchNoProgressFlag bool
	benchNoColorFlag    bool
)

func init() {
	benchCmd.Flags().IntVarP(&benchIterationsFlag, "iterations", "i", 0, "Number of evaluations (0 = run until --duration elapses)")
	benchCmd.Flags().StringVarP(&benchDurationFlag, "duration", "d", "", "Benchmark duration (e.g., 30s, 5m)")
	benchCmd.Flags().Float64VarP(&benchRateFlag, "rate", "r", 0, "Target evaluations per second (0 = unlimited)")
	benchCmd.Flags().IntVar(&benchWarmupFlag, "warmup", 1, "Discarded warmup evaluations before measuring")
	benchCmd.Flags().StringVar(&benchThresholdFlag, "threshold", "", "Pass/fail thresholds (e.g., \"p95<20ms,mean<10ms\")")
	benchCmd.Flags().BoolVar(&benchJSONFlag, "json", false, "Output results as JSON")
	benchCmd.Flags().BoolVar(&benchNoProgressFlag, "no-progress", false, "Disable real-time progress display")
	benchCmd.Flags().BoolVar(&benchNoColorFlag, "no-color", getEnvBool("SHEETSPEC_NO_COLOR", false), "Disable colored output (env: SHEETSPEC_NO_COLOR)")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := buildBenchConfig()
	if err != nil {
		return &configError{err}
	}

	reporterOpts := []bench.ReporterOption{
		bench.WithNoColor(benchNoColorFlag),
		bench.WithNoProgress(benchNoProgressFlag),
	}
	if benchJSONFlag {
		// JSON mode owns stdout; the human report goes nowhere.
		reporterOpts = append(reporterOpts, bench.WithWriter(io.Discard), bench.WithNoProgress(true))
	}
	reporter := bench.NewReporter(reporterOpts...)

	benchRunner := bench.NewRunner(cfg,
		bench.WithReporter(reporter),
		bench.WithRunnerConfig(&runner.Config{Details: true}),
	)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping gracefully...")
		cancel()
	}()

	result, err := benchRunner.Run(ctx, args[0])
	if err != nil {
		return err
	}

	if benchJSONFlag {
		jsonReporter := bench.NewReporter(bench.WithNoColor(true))
		if err := jsonReporter.JSONSummary(result.Summary, result.Thresholds); err != nil {
			return err
		}
	}

	// Exit with error code if thresholds failed
	if result.HasThresholdFailures() {
		os.Exit(ExitTestFailure)
	}

	return nil
}

// buildBenchConfig builds the bench configuration from flags.
func buildBenchConfig() (*bench.Config, error) {
	cfg := bench.DefaultConfig()

	if benchIterationsFlag > 0 {
		cfg.Iterations = benchIterationsFlag
	}

	if benchDurationFlag != "" {
		d, err := time.ParseDuration(benchDurationFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}
		cfg.Duration = d
		// A duration bound replaces the default iteration bound unless
		// iterations were requested explicitly.
		if benchIterationsFlag == 0 {
			cfg.Iterations = 0
		}
	}

	if benchRateFlag > 0 {
		cfg.Rate = benchRateFlag
	}

	cfg.Warmup = benchWarmupFlag

	if benchThresholdFlag != "" {
		t, err := bench.ParseThresholds(benchThresholdFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid thresholds: %w", err)
		}
		cfg.Thresholds = t
	}

	return cfg, nil
}
