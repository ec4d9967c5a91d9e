package interpret

import (
	"fmt"
	"strings"

	"github.com/sheetspec/sheetspec/packages/css"
)

// Kind distinguishes how an assertion was judged.
type Kind int

const (
	// ValueAssertion verdicts were decided inline and read from ✔/✖ lines.
	ValueAssertion Kind = iota
	// BlockAssertion verdicts are decided here by pairing output frames.
	BlockAssertion
)

// Assertion is one judged assertion of a test.
type Assertion struct {
	Kind        Kind
	Label       string
	Passed      bool
	External    bool
	Failure     string
	Actual      string
	Expected    string
	Output      []css.Rule
	Expect      []css.Rule
	Contains    []css.Rule
	Needle      string
	HasExpect   bool
	HasContains bool
	HasNeedle   bool
	Line        int
}

// Test groups the assertions recorded under one Test: header.
type Test struct {
	Name       string
	Assertions []*Assertion
}

// Passed reports whether every assertion of the test passed.
func (t *Test) Passed() bool {
	for _, a := range t.Assertions {
		if !a.Passed {
			return false
		}
	}
	return true
}

// Module groups the tests recorded under one module header.
type Module struct {
	Name  string
	Tests []*Test
}

// Report is a fully interpreted stream.
type Report struct {
	Modules []*Module
}

// Tests returns all tests across modules in stream order.
func (r *Report) Tests() []*Test {
	var out []*Test
	for _, m := range r.Modules {
		out = append(out, m.Tests...)
	}
	return out
}

const (
	moduleHeader = "# Module: "
	testHeader   = "Test: "
	passMark     = "✔ "
	failMark     = "✖ FAILED: "
	actualDetail = "- Output: "
	expectDetail = "- Expected: "
)

type builder struct {
	report  *Report
	module  *Module
	test    *Test
	lastVal *Assertion

	block      *Assertion
	section    string // open frame inside the block, "" when none
	needle     []string
	standalone string // open frame outside any ASSERT block
}

// Parse interprets an annotated report stream. The stream must be
// well-formed CSS with balanced block markers; anything else means the
// emitter and interpreter disagree, which the caller should treat as an
// engine defect rather than a test failure.
func Parse(stream string) (*Report, error) {
	sheet, err := css.Parse(stream, "")
	if err != nil {
		return nil, fmt.Errorf("malformed report stream: %w", err)
	}

	b := &builder{report: &Report{}}
	for _, node := range sheet.Nodes {
		switch node.Type {
		case css.CommentNode:
			if err := b.comment(node.Text, node.Line); err != nil {
				return nil, err
			}
		case css.RuleNode:
			b.rule(*node.Rule)
		}
	}
	if b.block != nil {
		return nil, fmt.Errorf("report line %d: unclosed ASSERT block", b.block.Line)
	}
	return b.report, nil
}

func (b *builder) comment(text string, line int) error {
	switch {
	case strings.HasPrefix(text, moduleHeader):
		b.endModule()
		b.module = &Module{Name: strings.TrimSpace(strings.TrimPrefix(text, moduleHeader))}
		b.report.Modules = append(b.report.Modules, b.module)
		return nil
	case isUnderline(text):
		return nil
	case strings.HasPrefix(text, testHeader):
		b.needTest(strings.TrimSpace(strings.TrimPrefix(text, testHeader)))
		return nil
	}

	// Inside a CONTAINS_STRING frame every comment is needle text.
	if b.collectingNeedle() {
		if text == "END_CONTAINS_STRING" {
			return b.closeFrame("CONTAINS_STRING", line)
		}
		b.needle = append(b.needle, text)
		return nil
	}

	switch {
	case strings.HasPrefix(text, passMark):
		b.valueAssertion(strings.TrimPrefix(text, passMark), true, line)
	case strings.HasPrefix(text, failMark):
		b.valueAssertion(strings.TrimPrefix(text, failMark), false, line)
	case strings.HasPrefix(text, actualDetail):
		if b.lastVal != nil && !b.lastVal.Passed {
			b.lastVal.Actual = strings.TrimPrefix(text, actualDetail)
		}
	case strings.HasPrefix(text, expectDetail):
		if b.lastVal != nil && !b.lastVal.Passed {
			b.lastVal.Expected = strings.TrimPrefix(text, expectDetail)
		}
	case text == "ASSERT" || strings.HasPrefix(text, "ASSERT:"):
		if b.block != nil {
			return fmt.Errorf("report line %d: nested ASSERT block", line)
		}
		desc := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text, "ASSERT"), ":"))
		b.block = &Assertion{Kind: BlockAssertion, Label: desc, Line: line}
	case text == "END_ASSERT":
		return b.closeAssert(line)
	case isFrameMarker(text, "OUTPUT"):
		return b.openFrame("OUTPUT", line)
	case text == "END_OUTPUT":
		return b.closeFrame("OUTPUT", line)
	case isFrameMarker(text, "EXPECT"):
		return b.openFrame("EXPECT", line)
	case text == "END_EXPECT":
		return b.closeFrame("EXPECT", line)
	case isFrameMarker(text, "CONTAINS_STRING"):
		return b.openFrame("CONTAINS_STRING", line)
	case isFrameMarker(text, "CONTAINS"):
		return b.openFrame("CONTAINS", line)
	case text == "END_CONTAINS":
		return b.closeFrame("CONTAINS", line)
	}
	// Untagged comments (summary, stats, decoration) are not data.
	return nil
}

func isFrameMarker(text, marker string) bool {
	return text == marker || strings.HasPrefix(text, marker+":")
}

func isUnderline(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r != '-' {
			return false
		}
	}
	return true
}

func (b *builder) collectingNeedle() bool {
	return b.section == "CONTAINS_STRING" || b.standalone == "CONTAINS_STRING"
}

func (b *builder) needModule() *Module {
	if b.module == nil {
		b.module = &Module{}
		b.report.Modules = append(b.report.Modules, b.module)
	}
	return b.module
}

func (b *builder) needTest(name string) *Test {
	if name != "" || b.test == nil {
		b.test = &Test{Name: name}
		m := b.needModule()
		m.Tests = append(m.Tests, b.test)
		b.lastVal = nil
	}
	return b.test
}

func (b *builder) endModule() {
	b.test = nil
	b.lastVal = nil
}

func (b *builder) valueAssertion(label string, passed bool, line int) {
	t := b.currentTest()
	a := &Assertion{Kind: ValueAssertion, Label: label, Passed: passed, Line: line}
	t.Assertions = append(t.Assertions, a)
	b.lastVal = a
}

func (b *builder) currentTest() *Test {
	if b.test == nil {
		b.needTest("")
	}
	return b.test
}

func (b *builder) openFrame(marker string, line int) error {
	if b.block == nil {
		// Frames may appear outside ASSERT blocks; their verdicts were
		// recorded inline as ✔/✖ lines, so the frame is evidence only.
		if b.standalone != "" {
			return fmt.Errorf("report line %d: %s frame opened inside %s", line, marker, b.standalone)
		}
		b.standalone = marker
		b.needle = nil
		return nil
	}
	if b.section != "" {
		return fmt.Errorf("report line %d: %s frame opened inside %s", line, marker, b.section)
	}
	b.section = marker
	b.needle = nil
	return nil
}

func (b *builder) closeFrame(marker string, line int) error {
	if b.block == nil {
		if b.standalone != marker {
			return fmt.Errorf("report line %d: END_%s without matching %s", line, marker, marker)
		}
		b.standalone = ""
		b.needle = nil
		return nil
	}
	if b.section != marker {
		return fmt.Errorf("report line %d: END_%s without matching %s", line, marker, marker)
	}
	switch marker {
	case "EXPECT":
		b.block.HasExpect = true
	case "CONTAINS":
		b.block.HasContains = true
	case "CONTAINS_STRING":
		b.block.Needle = strings.Join(b.needle, "\n")
		b.block.HasNeedle = true
		b.needle = nil
	}
	b.section = ""
	return nil
}

func (b *builder) rule(r css.Rule) {
	if b.block == nil || b.section == "" {
		return
	}
	switch b.section {
	case "OUTPUT":
		b.block.Output = append(b.block.Output, r)
	case "EXPECT":
		b.block.Expect = append(b.block.Expect, r)
	case "CONTAINS":
		b.block.Contains = append(b.block.Contains, r)
	}
}

func (b *builder) closeAssert(line int) error {
	if b.block == nil {
		return fmt.Errorf("report line %d: END_ASSERT without matching ASSERT", line)
	}
	if b.section != "" {
		return fmt.Errorf("report line %d: ASSERT closed with %s frame still open", line, b.section)
	}
	a := b.block
	b.block = nil
	judge(a)
	t := b.currentTest()
	t.Assertions = append(t.Assertions, a)
	return nil
}

// judge decides a block assertion from its collected frames.
func judge(a *Assertion) {
	switch {
	case a.HasExpect:
		a.Passed, a.Failure = compareExact(a.Output, a.Expect)
	case a.HasContains:
		a.Passed, a.Failure = compareSubset(a.Output, a.Contains)
	case a.HasNeedle:
		haystack := css.FormatRules(a.Output)
		a.Passed = strings.Contains(haystack, a.Needle)
		if !a.Passed {
			a.Failure = fmt.Sprintf("output does not contain %q", a.Needle)
		}
	default:
		// Output only: judged externally, e.g. against a snapshot.
		a.Passed = true
		a.External = true
	}
}

func compareExact(output, expect []css.Rule) (bool, string) {
	if len(output) != len(expect) {
		return false, fmt.Sprintf("expected %d rules, got %d", len(expect), len(output))
	}
	for i := range expect {
		got, want := output[i], expect[i]
		if got.Selector != want.Selector {
			return false, fmt.Sprintf("rule %d: got selector %q, want %q", i+1, got.Selector, want.Selector)
		}
		if !got.Equal(want) {
			return false, fmt.Sprintf("rule %d (%s): got %s, want %s", i+1, got.Selector, inlineDecls(got), inlineDecls(want))
		}
	}
	return true, ""
}

func compareSubset(output, contains []css.Rule) (bool, string) {
	for _, want := range contains {
		found := false
		for _, have := range output {
			if have.Selector == want.Selector && have.ContainsDecls(want) {
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Sprintf("no rule matching %q contains %s", want.Selector, inlineDecls(want))
		}
	}
	return true, ""
}

func inlineDecls(r css.Rule) string {
	if len(r.Decls) == 0 {
		return "{}"
	}
	parts := make([]string, len(r.Decls))
	for i, d := range r.Decls {
		parts[i] = d.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
