package runner

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/expr-lang/expr"

	"github.com/sheetspec/sheetspec/packages/assert"
	"github.com/sheetspec/sheetspec/packages/core/env"
	"github.com/sheetspec/sheetspec/packages/core/parser"
	"github.com/sheetspec/sheetspec/packages/coverage"
	"github.com/sheetspec/sheetspec/packages/css"
	"github.com/sheetspec/sheetspec/packages/interpret"
	"github.com/sheetspec/sheetspec/packages/render"
	"github.com/sheetspec/sheetspec/packages/session"
	"github.com/sheetspec/sheetspec/packages/snapshot"
	"github.com/sheetspec/sheetspec/packages/value"
)

type Runner struct {
	snapshots *snapshot.Manager
	config    *Config
}

type Config struct {
	Verbose           bool
	Bail              bool
	NameFilter        string
	TagsFilter        []string
	UpdateSnapshots   bool
	ContainerSelector string
	TerminalOutput    bool
	Details           bool
	Coverage          bool
	EnvFile           string
	Vars              map[string]string
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{Details: true}
	}
	return &Runner{
		snapshots: snapshot.NewManager(cfg.UpdateSnapshots),
		config:    cfg,
	}
}

// RunResult is the outcome of one suite file.
type RunResult struct {
	File     string
	Module   string
	Results  []*TestResult
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Report   string
	Stats    map[string]int
	Coverage *coverage.Report
	Timing   *hdrhistogram.Histogram
}

// TestResult is the outcome of one test case.
type TestResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Assertions []*AssertionResult
}

// AssertionResult is the final verdict of one assertion, after block
// pairing and golden comparison.
type AssertionResult struct {
	Label    string
	Passed   bool
	External bool
	Failure  string
	Actual   string
	Expected string
	Note     string
}

// fileRun is the mutable state of one suite execution: the session with
// its report buffer, the parsed source sheet, the golden comparisons
// recorded along the way and the result skeleton filled in afterwards.
type fileRun struct {
	runner   *Runner
	suite    *parser.Suite
	session  *session.Session
	resolver *env.Resolver
	sheet    *css.Stylesheet
	srcText  string
	touched  []string
	goldens  []*snapshot.Result
	records  []*TestResult
	executed []*TestResult
	hist     *hdrhistogram.Histogram
}

// RunFile parses and executes one suite file. Engine defects raised as
// panics inside the evaluation core surface here as *session.EngineError;
// anything else keeps propagating.
func (r *Runner) RunFile(path string) (result *RunResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if engineErr := session.AsEngineError(rec); engineErr != nil {
				result, err = nil, engineErr
				return
			}
			panic(rec)
		}
	}()

	suite, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing suite: %w", err)
	}
	return r.runSuite(suite)
}

func (r *Runner) runSuite(suite *parser.Suite) (*RunResult, error) {
	start := time.Now()

	var report bytes.Buffer
	s := session.New(
		session.WithReport(&report),
		session.WithTerminalOutput(r.config.TerminalOutput),
		session.WithContainerSelector(r.config.ContainerSelector),
	)

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		s.Message(fmt.Sprintf(format, args...), session.Warn)
	})
	if r.config.EnvFile != "" {
		vars, err := env.LoadDotEnv(r.config.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
		resolver.SetVars(vars)
	}
	resolver.SetVars(suite.Vars)
	resolver.SetVars(r.config.Vars)

	run := &fileRun{
		runner:   r,
		suite:    suite,
		session:  s,
		resolver: resolver,
		sheet:    &css.Stylesheet{},
		hist:     hdrhistogram.New(1, 60_000_000, 3),
	}

	if srcPath := suite.SourcePath(); srcPath != "" {
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return nil, fmt.Errorf("reading source stylesheet: %w", err)
		}
		run.srcText = string(data)
		sheet, err := css.Parse(run.srcText, srcPath)
		if err != nil {
			return nil, fmt.Errorf("parsing source stylesheet: %w", err)
		}
		run.sheet = sheet
	}

	if err := run.execute(); err != nil {
		return nil, err
	}

	stream := report.String()
	interpreted, err := interpret.Parse(stream)
	if err != nil {
		return nil, &session.EngineError{Op: "interpret", Message: err.Error()}
	}
	if err := run.assemble(interpreted); err != nil {
		return nil, err
	}

	result := &RunResult{
		File:     suite.Path,
		Module:   suite.Module,
		Results:  run.records,
		Duration: time.Since(start),
		Report:   stream,
		Stats:    s.Stats(),
		Timing:   run.hist,
	}
	for _, t := range result.Results {
		switch {
		case t.Skipped:
			result.Skipped++
		case t.Passed:
			result.Passed++
		default:
			result.Failed++
		}
	}

	if r.config.Coverage {
		analyzer := coverage.NewAnalyzer()
		analyzer.LoadStylesheet(run.sheet)
		result.Coverage = analyzer.Analyze(run.touched)
	}

	return result, nil
}

// execute walks the suite and emits the report stream.
func (run *fileRun) execute() error {
	s := run.session
	s.Context(session.KindModule, run.suite.Module)
	banner := "# Module: " + run.suite.Module
	s.Message(banner, session.Comments)
	s.Message(strings.Repeat("-", len(banner)), session.Comments)

	for _, t := range run.suite.Tests {
		if reason, skipped := run.shouldSkip(t); skipped {
			run.records = append(run.records, &TestResult{
				Name:       t.Name,
				Skipped:    true,
				SkipReason: reason,
			})
			continue
		}

		verdict, err := run.runTest(t)
		if err != nil {
			return err
		}
		if verdict == session.Fail && run.runner.config.Bail {
			break
		}
	}

	s.ContextPop()
	s.UpdateStatsCount(session.StatModules)

	stats := s.Stats()
	s.Message("# SUMMARY", session.Comments)
	s.Message(fmt.Sprintf("%d modules, %d tests, %d assertions", stats[session.StatModules], stats[session.StatTests], stats[session.StatAssertions]), session.Comments)
	return nil
}

// shouldSkip applies the name and tag filters, the suite's own skip
// flag, and the when: condition, in that order.
func (run *fileRun) shouldSkip(t *parser.TestCase) (string, bool) {
	cfg := run.runner.config
	if cfg.NameFilter != "" && !matchesPattern(t.Name, cfg.NameFilter) {
		return "filtered out", true
	}
	if len(cfg.TagsFilter) > 0 && !t.HasAnyTag(cfg.TagsFilter) {
		return "filtered out", true
	}
	if t.Skip {
		if t.SkipReason != "" {
			return t.SkipReason, true
		}
		return "skipped", true
	}
	if t.When != "" {
		ok, err := run.evalWhen(t.When)
		if err != nil {
			run.session.Message(fmt.Sprintf("test %q: %v", t.Name, err), session.Warn)
			return err.Error(), true
		}
		if !ok {
			return "when: " + t.When, true
		}
	}
	return "", false
}

// evalWhen evaluates a when: condition. Expressions see the resolved
// suite vars as `vars` and the process environment as `env`.
func (run *fileRun) evalWhen(cond string) (bool, error) {
	input := map[string]any{
		"vars": run.resolver.Vars(),
		"env":  environMap(),
	}
	program, err := expr.Compile(cond, expr.Env(input), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compiling when %q: %w", cond, err)
	}
	out, err := expr.Run(program, input)
	if err != nil {
		return false, fmt.Errorf("evaluating when %q: %w", cond, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("when %q did not yield a boolean", cond)
	}
	return ok, nil
}

func environMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, val, found := strings.Cut(kv, "="); found {
			out[key] = val
		}
	}
	return out
}

// runTest emits one test into the stream and returns its in-stream
// verdict. Block comparisons are still open at this point; the verdict
// covers value assertions, golden comparisons and substring checks,
// which is what bail acts on.
func (run *fileRun) runTest(t *parser.TestCase) (session.Result, error) {
	s := run.session
	record := &TestResult{Name: t.Name}
	run.records = append(run.records, record)
	run.executed = append(run.executed, record)

	start := time.Now()
	s.Context(session.KindTest, t.Name)
	s.Message("Test: "+t.Name, session.Comments)

	for _, a := range t.Assertions {
		if err := run.runAssertion(t, a); err != nil {
			return session.Fail, err
		}
	}

	verdict, judged := s.TestResult()
	s.ContextPop()
	s.UpdateStatsCount(session.StatTests)

	record.Duration = time.Since(start)
	_ = run.hist.RecordValue(record.Duration.Microseconds())

	if !judged {
		return session.Pass, nil
	}
	return verdict, nil
}

func (run *fileRun) runAssertion(t *parser.TestCase, a *parser.Assertion) error {
	desc := run.resolver.Resolve(a.Description)
	switch a.Kind {
	case parser.AssertEqual, parser.AssertUnequal:
		actual := run.resolveLiteral(a.Of)
		expected := run.resolveLiteral(a.To)
		opts := run.evalOptions(a)
		if a.Kind == parser.AssertEqual {
			assert.Equal(run.session, actual, expected, desc, opts...)
		} else {
			assert.Unequal(run.session, actual, expected, desc, opts...)
		}
	case parser.AssertTruthy:
		assert.True(run.session, run.resolveLiteral(a.Of), desc, run.evalOptions(a)...)
	case parser.AssertFalsy:
		assert.False(run.session, run.resolveLiteral(a.Of), desc, run.evalOptions(a)...)
	case parser.AssertOutput:
		return run.runOutput(t, a, desc)
	case parser.AssertContainsString:
		run.runContainsString(a, desc)
	}
	return nil
}

func (run *fileRun) evalOptions(a *parser.Assertion) []assert.EvalOption {
	var opts []assert.EvalOption
	if a.Inspect {
		opts = append(opts, assert.Inspected())
	}
	if !run.runner.config.Details {
		opts = append(opts, assert.WithoutDetail())
	}
	return opts
}

// runOutput emits an output assertion: an ASSERT block holding the
// OUTPUT frame and, when the suite gave one inline, the expectation
// frame. Inline expectations are judged later from the stream; without
// one the output is compared against its golden copy here, and the
// stream records the assertion as externally judged.
func (run *fileRun) runOutput(t *parser.TestCase, a *parser.Assertion, desc string) error {
	s := run.session

	output, err := run.outputBody(t, a)
	if err != nil {
		return err
	}
	var expectation *cssBody
	switch {
	case a.Expect != "":
		expectation, err = run.parseBody(run.resolver.Resolve(a.Expect), a.WrapSelector())
		if err != nil {
			return fmt.Errorf("test %q: parsing expect block: %w", t.Name, err)
		}
	case a.Contains != "":
		expectation, err = run.parseBody(run.resolver.Resolve(a.Contains), a.WrapSelector())
		if err != nil {
			return fmt.Errorf("test %q: parsing contains block: %w", t.Name, err)
		}
	}

	assert.Setup(s, "output", desc)
	assert.Block(s, assert.TypeAssert, func(_ *css.Writer) {
		output.emit(s, assert.TypeOutput)
		switch {
		case a.Expect != "":
			expectation.emit(s, assert.TypeExpect)
		case a.Contains != "":
			expectation.emit(s, assert.TypeContains)
		case a.Needle != "":
			assert.StringBlock(s, assert.TypeContainsString, run.resolver.Resolve(a.Needle))
		}
	}, assert.Bare(), assert.Description(desc))

	verdict := session.Pass
	if a.Snapshot {
		snap := run.runner.snapshots.Compare(run.suite.Path, t.Name, desc, output.text(s.ContainerSelector()))
		run.goldens = append(run.goldens, snap)
		if !snap.Passed {
			verdict = session.Fail
			s.Message(fmt.Sprintf("test %q: %s", t.Name, snap.Message), session.Warn)
		} else if snap.IsNew || snap.WasUpdated {
			s.Message(fmt.Sprintf("test %q: %s", t.Name, snap.Message), session.Debug)
		}
	}
	assert.Strike(s, verdict, true)
	return nil
}

// runContainsString judges a suite-level substring check against the
// raw source stylesheet. The needle is framed in the stream as
// evidence; the verdict itself is recorded inline.
func (run *fileRun) runContainsString(a *parser.Assertion, desc string) {
	s := run.session
	needle := run.resolver.Resolve(a.Needle)

	assert.Setup(s, "contains-string", desc)
	assert.StringBlock(s, assert.TypeContainsString, needle, assert.Description(desc))

	if strings.Contains(run.srcText, needle) {
		render.PassDetails(s)
		assert.Strike(s, session.Pass, true)
		return
	}
	haystack := value.String(truncate(strings.TrimSpace(run.srcText), 60))
	render.FailDetails(s, haystack, value.String(needle), run.runner.config.Details)
	assert.Strike(s, session.Fail, true)
}

// assemble folds the interpreted stream and the recorded golden
// comparisons into the result skeleton.
func (run *fileRun) assemble(rep *interpret.Report) error {
	tests := rep.Tests()
	if len(tests) != len(run.executed) {
		return &session.EngineError{
			Op:      "interpret",
			Message: fmt.Sprintf("report stream describes %d tests, ran %d", len(tests), len(run.executed)),
		}
	}

	goldens := run.goldens
	for i, t := range tests {
		record := run.executed[i]
		record.Passed = true
		for _, a := range t.Assertions {
			res := &AssertionResult{
				Label:    a.Label,
				Passed:   a.Passed,
				Failure:  a.Failure,
				Actual:   a.Actual,
				Expected: a.Expected,
			}
			if a.External {
				if len(goldens) == 0 {
					return &session.EngineError{Op: "snapshot", Message: "stream has more external assertions than recorded goldens"}
				}
				snap := goldens[0]
				goldens = goldens[1:]
				res.External = true
				res.Passed = snap.Passed
				if !snap.Passed {
					res.Failure = snap.Message
					res.Actual = snap.Actual
					res.Expected = snap.Expected
				} else if snap.IsNew || snap.WasUpdated {
					res.Note = snap.Message
				}
			}
			if !res.Passed {
				record.Passed = false
			}
			record.Assertions = append(record.Assertions, res)
		}
	}
	if len(goldens) != 0 {
		return &session.EngineError{Op: "snapshot", Message: "recorded goldens outnumber external assertions in the stream"}
	}
	return nil
}

// matchesPattern matches a test name against a filter with optional
// leading or trailing wildcard.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	leading := strings.HasPrefix(pattern, "*")
	trailing := strings.HasSuffix(pattern, "*")
	switch {
	case leading && trailing:
		return strings.Contains(name, strings.Trim(pattern, "*"))
	case leading:
		return strings.HasSuffix(name, pattern[1:])
	case trailing:
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}
	return name == pattern
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
