package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sheetspec/sheetspec/packages/core/config"
	"github.com/sheetspec/sheetspec/packages/core/runner"
	"github.com/sheetspec/sheetspec/packages/export/metrics"
	"github.com/sheetspec/sheetspec/packages/history"
	"github.com/sheetspec/sheetspec/packages/notify"
	"github.com/sheetspec/sheetspec/packages/output"
	"github.com/sheetspec/sheetspec/packages/session"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run stylesheet tests from suite files",
	Long: `Run stylesheet tests defined in *.sheet.yaml suite files.

Examples:
  sheetspec run buttons.sheet.yaml
  sheetspec run ./styles/ --tags smoke
  sheetspec run buttons.sheet.yaml --name "brand color"
  sheetspec run ./styles/ --watch
  sheetspec run ./styles/ --coverage --output-dir reports/
  sheetspec run ./styles/ --history --metrics json --metrics-file metrics.json
  sheetspec run ./styles/ --notify slack --slack-webhook $SLACK_WEBHOOK`,
	Args: minimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag          string
	nameFlag            string
	tagsFlag            string
	verboseFlag         int // 0=off, 1=-v, 2=-vv
	quietFlag           bool
	bailFlag            bool
	noColorFlag         bool
	dryRunFlag          bool
	outputFlag          string
	outputFileFlag      string
	outputDirFlag       string
	watchFlag           bool
	containerFlag       string
	terminalFlag        bool
	envFileFlag         string
	varFlags            []string
	coverageFlag        bool
	updateSnapshotsFlag bool

	// History flags
	historyFlag   bool
	historyDBFlag string

	// Metrics flags
	metricsFlag         string
	metricsFileFlag     string
	metricsTextfileFlag string

	// Notification flags
	notifyFlag         string
	notifyOnFlag       string
	slackWebhookFlag   string
	slackChannelFlag   string
	webhookURLFlag     string
	webhookHeaderFlags []string
)

func init() {
	// Core flags
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("SHEETSPEC_CONFIG", ""), "Path to config file (env: SHEETSPEC_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only tests matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("SHEETSPEC_TAGS", ""), "Run only tests with specified tags (comma-separated) (env: SHEETSPEC_TAGS)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("SHEETSPEC_ENV_FILE", ""), "Path to .env file for variable interpolation (env: SHEETSPEC_ENV_FILE)")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Set a suite variable (key=value, repeatable)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v, -vv for more detail)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("SHEETSPEC_QUIET", false), "Suppress all output except errors (env: SHEETSPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("SHEETSPEC_NO_COLOR", false), "Disable colored output (env: SHEETSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("SHEETSPEC_OUTPUT", "console"), "Output format: console, json, junit, tap (env: SHEETSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("SHEETSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: SHEETSPEC_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&outputDirFlag, "output-dir", getEnvString("SHEETSPEC_OUTPUT_DIR", ""), "Directory for coverage and report artifacts (env: SHEETSPEC_OUTPUT_DIR)")
	runCmd.Flags().BoolVar(&terminalFlag, "terminal", getEnvBool("SHEETSPEC_TERMINAL", false), "Echo report messages to the terminal as they happen (env: SHEETSPEC_TERMINAL)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("SHEETSPEC_BAIL", false), "Stop on first failure (env: SHEETSPEC_BAIL)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without evaluating")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run tests")
	runCmd.Flags().StringVar(&containerFlag, "container", getEnvString("SHEETSPEC_CONTAINER", ""), "Container selector wrapped around output blocks (env: SHEETSPEC_CONTAINER)")
	runCmd.Flags().BoolVar(&coverageFlag, "coverage", getEnvBool("SHEETSPEC_COVERAGE", false), "Report selector coverage of the source stylesheet (env: SHEETSPEC_COVERAGE)")
	runCmd.Flags().BoolVar(&updateSnapshotsFlag, "update-snapshots", false, "Update golden snapshot files instead of comparing")

	// History flags
	runCmd.Flags().BoolVar(&historyFlag, "history", getEnvBool("SHEETSPEC_HISTORY", false), "Record this run in the history database (env: SHEETSPEC_HISTORY)")
	runCmd.Flags().StringVar(&historyDBFlag, "history-db", getEnvString("SHEETSPEC_HISTORY_DB", ""), "Path to the history database (env: SHEETSPEC_HISTORY_DB)")

	// Metrics flags
	runCmd.Flags().StringVar(&metricsFlag, "metrics", getEnvString("SHEETSPEC_METRICS", ""), "Metrics export format: json, prometheus (env: SHEETSPEC_METRICS)")
	runCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", getEnvString("SHEETSPEC_METRICS_FILE", ""), "Output file for JSON metrics (env: SHEETSPEC_METRICS_FILE)")
	runCmd.Flags().StringVar(&metricsTextfileFlag, "metrics-textfile", getEnvString("SHEETSPEC_METRICS_TEXTFILE", ""), "Output file for the Prometheus textfile collector (env: SHEETSPEC_METRICS_TEXTFILE)")

	// Notification flags
	runCmd.Flags().StringVar(&notifyFlag, "notify", getEnvString("SHEETSPEC_NOTIFY", ""), "Notification service: slack, webhook (env: SHEETSPEC_NOTIFY)")
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("SHEETSPEC_NOTIFY_ON", "failure"), "When to notify: always, failure, success, recovery (env: SHEETSPEC_NOTIFY_ON)")
	runCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("SLACK_WEBHOOK", ""), "Slack webhook URL (env: SLACK_WEBHOOK)")
	runCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", getEnvString("SLACK_CHANNEL", ""), "Slack channel override (env: SLACK_CHANNEL)")
	runCmd.Flags().StringVar(&webhookURLFlag, "webhook-url", getEnvString("SHEETSPEC_WEBHOOK", ""), "Generic JSON webhook URL (env: SHEETSPEC_WEBHOOK)")
	runCmd.Flags().StringArrayVar(&webhookHeaderFlags, "webhook-header", nil, "Extra webhook header (name:value, repeatable)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// runTotals accumulates the outcome of one pass over all suite files.
type runTotals struct {
	files      int
	passed     int
	failed     int
	skipped    int
	assertions int
	duration   time.Duration
	failures   []notify.FailedTest
	err        error
}

func (t runTotals) tests() int {
	return t.passed + t.failed + t.skipped
}

func runCommand(cmd *cobra.Command, args []string) error {
	// Load config from file (if present) and apply CLI overrides
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return &configError{fmt.Errorf("loading config: %w", err)}
	}

	reporterName := strings.ToLower(outputFlag)
	if !cmd.Flags().Changed("output") && len(fileConfig.Reporters) > 0 {
		reporterName = strings.ToLower(fileConfig.Reporters[0])
	}

	verbose := fileConfig.GetVerbose() || verboseFlag > 0
	noColor := fileConfig.GetNoColor() || noColorFlag || quietFlag
	bail := fileConfig.GetBail() || bailFlag
	updateSnapshots := fileConfig.GetUpdateSnapshots() || updateSnapshotsFlag
	coverageEnabled := fileConfig.GetCoverage() || coverageFlag
	terminalOutput := fileConfig.GetTerminalOutput() || terminalFlag

	containerSelector := fileConfig.ContainerSelector
	if containerFlag != "" {
		containerSelector = containerFlag
	}

	outputDir := fileConfig.OutputDir
	if outputDirFlag != "" {
		outputDir = outputDirFlag
	}

	envFile := fileConfig.EnvFile
	if envFileFlag != "" {
		envFile = envFileFlag
	}

	var tagsFilter []string
	if tagsFlag != "" {
		for _, t := range strings.Split(tagsFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tagsFilter = append(tagsFilter, t)
			}
		}
	} else {
		tagsFilter = fileConfig.Tags
	}

	vars := make(map[string]string)
	for k, v := range fileConfig.Vars {
		vars[k] = v
	}
	for _, kv := range varFlags {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return &usageError{fmt.Errorf("invalid --var %q (want key=value)", kv)}
		}
		vars[key] = value
	}

	// Setup output writer
	var outWriter *os.File
	if outputFileFlag != "" {
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	// Create formatter based on output flag
	var formatter Formatter
	switch reporterName {
	case "json":
		opts := []output.JSONOption{}
		if outWriter != nil {
			opts = append(opts, output.JSONWithWriter(outWriter))
		}
		formatter = output.NewJSONFormatter(opts...)
	case "junit":
		opts := []output.JUnitOption{}
		if outWriter != nil {
			opts = append(opts, output.JUnitWithWriter(outWriter))
		}
		formatter = output.NewJUnitFormatter(opts...)
	case "tap":
		opts := []output.TAPOption{}
		if outWriter != nil {
			opts = append(opts, output.TAPWithWriter(outWriter))
		}
		formatter = output.NewTAPFormatter(opts...)
	default: // "console"
		consoleOpts := []output.ConsoleOption{
			output.WithVerbose(verbose),
			output.WithNoColor(noColor),
		}
		if outWriter != nil {
			consoleOpts = append(consoleOpts, output.WithWriter(outWriter))
		}
		formatter = output.NewConsoleFormatter(consoleOpts...)
	}

	formatter.FormatHeader(version)

	// Set up notification manager
	var notifyManager *notify.Manager
	if notifyFlag != "" {
		var notifiers []notify.Notifier
		notifyOn := notify.NotifyOn(notifyOnFlag)

		for _, service := range strings.Split(notifyFlag, ",") {
			service = strings.TrimSpace(service)
			switch strings.ToLower(service) {
			case "slack":
				if slackWebhookFlag == "" {
					return &configError{fmt.Errorf("--slack-webhook is required when using --notify slack")}
				}
				slackOpts := []notify.SlackOption{}
				if slackChannelFlag != "" {
					slackOpts = append(slackOpts, notify.WithSlackChannel(slackChannelFlag))
				}
				notifiers = append(notifiers, notify.NewSlackNotifier(slackWebhookFlag, slackOpts...))

			case "webhook":
				if webhookURLFlag == "" {
					return &configError{fmt.Errorf("--webhook-url is required when using --notify webhook")}
				}
				webhookOpts := []notify.WebhookOption{}
				for _, header := range webhookHeaderFlags {
					name, value, ok := strings.Cut(header, ":")
					if !ok {
						return &usageError{fmt.Errorf("invalid --webhook-header %q (want name:value)", header)}
					}
					webhookOpts = append(webhookOpts, notify.WithWebhookHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
				}
				notifiers = append(notifiers, notify.NewWebhookNotifier(webhookURLFlag, webhookOpts...))
			}
		}

		if len(notifiers) > 0 {
			notifyManager = notify.NewManager(notifyOn, notifiers...)
		}
	}

	// Set up metrics exporters
	var metricsCollector *metrics.Collector
	if metricsFlag != "" {
		var exporters []metrics.Exporter
		for _, format := range strings.Split(metricsFlag, ",") {
			format = strings.TrimSpace(format)
			switch strings.ToLower(format) {
			case "json":
				jsonOpts := []metrics.JSONOption{}
				if metricsFileFlag != "" {
					jsonOpts = append(jsonOpts, metrics.WithJSONFile(metricsFileFlag))
				} else {
					jsonOpts = append(jsonOpts, metrics.WithJSONWriter(os.Stdout))
				}
				exporters = append(exporters, metrics.NewJSONExporter(jsonOpts...))

			case "prometheus":
				promOpts := []metrics.PrometheusOption{}
				if metricsTextfileFlag != "" {
					promOpts = append(promOpts, metrics.WithPrometheusFile(metricsTextfileFlag))
				} else {
					promOpts = append(promOpts, metrics.WithPrometheusWriter(os.Stdout))
				}
				exporters = append(exporters, metrics.NewPrometheusExporter(promOpts...))
			}
		}
		if len(exporters) > 0 {
			metricsCollector = metrics.NewCollector(exporters...)
		}
	}

	// Open history store when recording is requested
	var historyStore *history.Store
	if historyFlag {
		dbPath := resolveHistoryDB(historyDBFlag, fileConfig)
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return &configError{fmt.Errorf("creating history directory: %w", err)}
			}
		}
		historyStore, err = history.Open(dbPath)
		if err != nil {
			return &configError{err}
		}
		defer historyStore.Close()
	}

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return err
	}

	if len(files) == 0 {
		formatter.FormatError(fmt.Errorf("no *.sheet.yaml files found"))
		return fmt.Errorf("no files found")
	}

	cfg := &runner.Config{
		Verbose:           verbose,
		Bail:              bail,
		NameFilter:        nameFlag,
		TagsFilter:        tagsFilter,
		UpdateSnapshots:   updateSnapshots,
		ContainerSelector: containerSelector,
		TerminalOutput:    terminalOutput,
		Details:           fileConfig.GetDetails(),
		Coverage:          coverageEnabled,
		EnvFile:           envFile,
		Vars:              vars,
	}

	r := runner.NewRunner(cfg)

	// Create a function to run all tests
	runTests := func() runTotals {
		var totals runTotals
		startTime := time.Now()

		for _, file := range files {
			if dryRunFlag {
				fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s\n", file)
				continue
			}

			result, err := r.RunFile(file)
			if err != nil {
				formatter.FormatError(err)
				if totals.err == nil {
					totals.err = err
				}
				if bail {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			totals.files++
			totals.passed += result.Passed
			totals.failed += result.Failed
			totals.skipped += result.Skipped
			totals.assertions += result.Stats[session.StatAssertions]

			for _, test := range result.Results {
				if metricsCollector != nil {
					metricsCollector.Record(testMetrics(result, test))
				}
				if !test.Passed && !test.Skipped {
					totals.failures = append(totals.failures, notify.FailedTest{
						Name:   test.Name,
						File:   result.File,
						Errors: assertionFailures(test),
					})
				}
			}

			if coverageEnabled && outputDir != "" && result.Coverage != nil {
				if err := writeCoverageReports(outputDir, result); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to write coverage report: %v\n", err)
				}
			}

			if bail && result.Failed > 0 {
				break
			}
		}

		totals.duration = time.Since(startTime)
		return totals
	}

	flushMetrics := func() {
		if metricsCollector == nil {
			return
		}
		if err := metricsCollector.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to export metrics: %v\n", err)
		}
	}

	sendNotifications := func(totals runTotals) {
		if notifyManager == nil {
			return
		}
		summary := &notify.RunSummary{
			TotalFiles:    totals.files,
			TotalTests:    totals.tests(),
			PassedTests:   totals.passed,
			FailedTests:   totals.failed,
			SkippedTests:  totals.skipped,
			Duration:      totals.duration,
			FailedResults: totals.failures,
		}
		if err := notifyManager.Notify(summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to send notification: %v\n", err)
		}
	}

	recordHistory := func(totals runTotals) {
		if historyStore == nil {
			return
		}
		_, err := historyStore.Record(history.Summary{
			Files:    totals.files,
			Tests:    totals.tests(),
			Passed:   totals.passed,
			Failed:   totals.failed,
			Skipped:  totals.skipped,
			Duration: totals.duration,
			Stats:    map[string]int{"assertions": totals.assertions},
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record run history: %v\n", err)
		}
	}

	// Run tests once
	totals := runTests()

	// Flush output for formatters that accumulate results
	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(totals.duration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	flushMetrics()
	sendNotifications(totals)
	recordHistory(totals)

	// If watch mode is not enabled, exit normally
	if !watchFlag {
		if metricsCollector != nil {
			_ = metricsCollector.Close()
		}
		if totals.err != nil {
			return totals.err
		}
		if totals.failed > 0 {
			os.Exit(ExitTestFailure)
		}
		return nil
	}

	// Watch mode: set up file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Add files and directories to watch
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	// Also watch the original args if they're directories
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// React to writes on suite files and stylesheets alike; a
			// source edit has to re-trigger the suites that cover it.
			if event.Has(fsnotify.Write) && isWatchedFile(event.Name) {
				// Debounce: reset timer on each event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running tests...\n\n", event.Name)

					// Re-create formatter for new output (JSON/JUnit/TAP accumulate state)
					switch reporterName {
					case "json":
						formatter = output.NewJSONFormatter()
					case "junit":
						formatter = output.NewJUnitFormatter()
					case "tap":
						formatter = output.NewTAPFormatter()
					default:
						formatter = output.NewConsoleFormatter(
							output.WithVerbose(verbose),
							output.WithNoColor(noColor),
						)
					}

					// Re-run tests
					rerun := runTests()

					// Flush output
					if flushable, ok := formatter.(Flushable); ok {
						_ = flushable.Flush(rerun.duration)
					}

					flushMetrics()
					sendNotifications(rerun)
					recordHistory(rerun)

					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isSuiteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if isSuiteFile(arg) {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func isSuiteFile(path string) bool {
	return strings.HasSuffix(path, ".sheet.yaml") || strings.HasSuffix(path, ".sheet.yml")
}

// isWatchedFile reports whether a change to the file should trigger a
// watch-mode re-run: suite files and stylesheets both count.
func isWatchedFile(path string) bool {
	return isSuiteFile(path) || filepath.Ext(path) == ".css"
}

// testMetrics converts one test outcome into the exporter shape.
func testMetrics(result *runner.RunResult, test *runner.TestResult) *metrics.TestMetrics {
	failed := 0
	for _, a := range test.Assertions {
		if !a.Passed {
			failed++
		}
	}
	return &metrics.TestMetrics{
		TestName:       test.Name,
		File:           result.File,
		Module:         result.Module,
		DurationMs:     float64(test.Duration.Microseconds()) / 1000.0,
		Passed:         test.Passed,
		Skipped:        test.Skipped,
		AssertionCount: len(test.Assertions),
		FailedCount:    failed,
		Timestamp:      time.Now(),
	}
}

// assertionFailures flattens failed assertion labels and messages for
// notification payloads.
func assertionFailures(test *runner.TestResult) []string {
	var errs []string
	for _, a := range test.Assertions {
		if a.Passed {
			continue
		}
		msg := a.Label
		if msg == "" {
			msg = "output block"
		}
		if a.Failure != "" {
			msg += ": " + a.Failure
		}
		errs = append(errs, msg)
	}
	return errs
}

// writeCoverageReports writes the per-module coverage artifacts under
// <outputDir>/coverage/.
func writeCoverageReports(outputDir string, result *runner.RunResult) error {
	dir := filepath.Join(outputDir, "coverage")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	htmlPath := filepath.Join(dir, result.Module+".html")
	if err := os.WriteFile(htmlPath, []byte(result.Coverage.FormatHTML()), 0644); err != nil {
		return err
	}

	jsonReport, err := result.Coverage.FormatJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, result.Module+".json"), []byte(jsonReport), 0644)
}
