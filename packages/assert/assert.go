package assert

import (
	"fmt"

	"github.com/sheetspec/sheetspec/packages/render"
	"github.com/sheetspec/sheetspec/packages/session"
	"github.com/sheetspec/sheetspec/packages/value"
)

// Block types, doubling as the session's output modes.
const (
	TypeAssert         = "assert"
	TypeOutput         = "output"
	TypeExpect         = "expect"
	TypeContains       = "contains"
	TypeContainsString = "contains-string"
)

var markers = map[string]string{
	TypeAssert:         "ASSERT",
	TypeOutput:         "OUTPUT",
	TypeExpect:         "EXPECT",
	TypeContains:       "CONTAINS",
	TypeContainsString: "CONTAINS_STRING",
}

// Marker returns the comment marker for a block type, e.g. "OUTPUT" for
// TypeOutput. Unknown block types are an engine defect.
func Marker(blockType string) string {
	m, ok := markers[blockType]
	if !ok {
		session.Fatalf("block", "unknown block type: %q", blockType)
	}
	return m
}

// Setup opens an assertion scope. When description is empty it borrows
// the enclosing test's label, so bare assertions still read sensibly in
// the report.
func Setup(s *session.Session, name, description string) {
	if description == "" {
		if label, ok := s.ContextOf(session.KindTest); ok {
			description = label
		}
	}
	s.Context(session.KindAssert, fmt.Sprintf("[%s] %s", name, description))
}

// Strike closes the current assertion scope: the verdict is folded into
// the enclosing test, the assertion counter is bumped and the scope is
// popped. resetOutput additionally clears the output mode, which block
// assertions set and value assertions never touch.
func Strike(s *session.Session, r session.Result, resetOutput bool) {
	s.UpdateTest(r)
	s.UpdateStatsCount(session.StatAssertions)
	s.ContextPop()
	if resetOutput {
		s.OutputContext("")
	}
}

type evalConfig struct {
	invert  bool
	inspect bool
	detail  bool
}

// EvalOption tunes a single value assertion.
type EvalOption func(*evalConfig)

// Inverted flips the comparison: equality fails, inequality passes.
func Inverted() EvalOption {
	return func(c *evalConfig) { c.invert = true }
}

// Inspected compares rendered forms instead of structural values, for
// cases where two writings of the same value should count as equal.
func Inspected() EvalOption {
	return func(c *evalConfig) { c.inspect = true }
}

// WithoutDetail suppresses the actual/expected lines on failure.
func WithoutDetail() EvalOption {
	return func(c *evalConfig) { c.detail = false }
}

// Evaluate judges the current assertion scope and completes its
// lifecycle. It emits a pass mark or failure details into the report,
// strikes the scope and returns the verdict. A failing assertion is a
// normal outcome, never an error.
func Evaluate(s *session.Session, actual, expected value.Value, opts ...EvalOption) session.Result {
	cfg := evalConfig{detail: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.inspect {
		actual = value.String(actual.String())
		expected = value.String(expected.String())
	}
	r := s.GetResult(actual, expected, cfg.invert)
	if r == session.Pass {
		render.PassDetails(s)
	} else {
		render.FailDetails(s, actual, expected, cfg.detail)
	}
	Strike(s, r, false)
	return r
}

// Equal asserts that actual equals expected.
func Equal(s *session.Session, actual, expected value.Value, description string, opts ...EvalOption) session.Result {
	Setup(s, "assert-equal", description)
	return Evaluate(s, actual, expected, opts...)
}

// Unequal asserts that actual differs from expected.
func Unequal(s *session.Session, actual, expected value.Value, description string, opts ...EvalOption) session.Result {
	Setup(s, "assert-unequal", description)
	return Evaluate(s, actual, expected, append(opts, Inverted())...)
}

// True asserts that actual is truthy. The operand is reduced to a
// boolean first, so failure details show the coerced value.
func True(s *session.Session, actual value.Value, description string, opts ...EvalOption) session.Result {
	Setup(s, "assert-true", description)
	return Evaluate(s, value.Bool(actual.Truthy()), value.Bool(true), opts...)
}

// False asserts that actual is falsy.
func False(s *session.Session, actual value.Value, description string, opts ...EvalOption) session.Result {
	Setup(s, "assert-false", description)
	return Evaluate(s, value.Bool(actual.Truthy()), value.Bool(false), opts...)
}
