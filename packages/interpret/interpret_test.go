package interpret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingStream = `/* # Module: colors */
/* ----------------- */
/* Test: mixes red */
/*   ✔ [assert-equal] mixes red */
/* Test: button reset */
/* ASSERT: resets the button */
/* OUTPUT */
.test-output {
  margin: 0;
  color: red;
}
/* END_OUTPUT */
/* EXPECT */
.test-output {
  margin: 0;
  color: red;
}
/* END_EXPECT */
/* END_ASSERT */
/* # SUMMARY */
/* 2 Tests, 2 Assertions */
`

func TestParsePassingStream(t *testing.T) {
	report, err := Parse(passingStream)
	require.NoError(t, err)
	require.Len(t, report.Modules, 1)

	m := report.Modules[0]
	assert.Equal(t, "colors", m.Name)
	require.Len(t, m.Tests, 2)

	first := m.Tests[0]
	assert.Equal(t, "mixes red", first.Name)
	require.Len(t, first.Assertions, 1)
	assert.Equal(t, ValueAssertion, first.Assertions[0].Kind)
	assert.Equal(t, "[assert-equal] mixes red", first.Assertions[0].Label)
	assert.True(t, first.Assertions[0].Passed)
	assert.True(t, first.Passed())

	second := m.Tests[1]
	assert.Equal(t, "button reset", second.Name)
	require.Len(t, second.Assertions, 1)
	blk := second.Assertions[0]
	assert.Equal(t, BlockAssertion, blk.Kind)
	assert.Equal(t, "resets the button", blk.Label)
	assert.True(t, blk.Passed, "identical output and expect should pass: %s", blk.Failure)
	assert.False(t, blk.External)
}

func TestParseFailedValueAssertion(t *testing.T) {
	stream := `/* # Module: math */
/* Test: adds numbers */
/*   ✖ FAILED: [assert-equal] adds numbers */
/*     - Output: [number] 5 */
/*     - Expected: [number] 6 */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	tests := report.Tests()
	require.Len(t, tests, 1)
	require.Len(t, tests[0].Assertions, 1)

	a := tests[0].Assertions[0]
	assert.False(t, a.Passed)
	assert.Equal(t, "[number] 5", a.Actual)
	assert.Equal(t, "[number] 6", a.Expected)
	assert.False(t, tests[0].Passed())
}

func TestJudgeExpectMismatch(t *testing.T) {
	stream := `/* Test: wrong color */
/* ASSERT: wrong color */
/* OUTPUT */
.test-output {
  color: red;
}
/* END_OUTPUT */
/* EXPECT */
.test-output {
  color: blue;
}
/* END_EXPECT */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.False(t, a.Passed)
	assert.Contains(t, a.Failure, "rule 1 (.test-output)")
	assert.Contains(t, a.Failure, "color: red;")
	assert.Contains(t, a.Failure, "color: blue;")
}

func TestJudgeExpectRuleCountMismatch(t *testing.T) {
	stream := `/* Test: missing rule */
/* ASSERT: missing rule */
/* OUTPUT */
.a { color: red; }
/* END_OUTPUT */
/* EXPECT */
.a { color: red; }
.b { color: blue; }
/* END_EXPECT */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.False(t, a.Passed)
	assert.Equal(t, "expected 2 rules, got 1", a.Failure)
}

func TestJudgeExpectSelectorMismatch(t *testing.T) {
	stream := `/* Test: renamed */
/* ASSERT: renamed */
/* OUTPUT */
.old { color: red; }
/* END_OUTPUT */
/* EXPECT */
.new { color: red; }
/* END_EXPECT */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.False(t, a.Passed)
	assert.Contains(t, a.Failure, `got selector ".old", want ".new"`)
}

func TestJudgeEmptyExpect(t *testing.T) {
	stream := `/* Test: silent mixin */
/* ASSERT: silent mixin */
/* OUTPUT */
/* END_OUTPUT */
/* EXPECT */
/* END_EXPECT */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.True(t, a.Passed, "empty output matching empty expect must pass")
	assert.False(t, a.External, "an empty EXPECT frame is still an expectation")
}

func TestJudgeContains(t *testing.T) {
	stream := `/* Test: subset */
/* ASSERT: subset */
/* OUTPUT */
.card {
  margin: 0;
  padding: 1em;
  color: red;
}
/* END_OUTPUT */
/* CONTAINS */
.card {
  color: red;
  margin: 0;
}
/* END_CONTAINS */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.True(t, a.Passed, "subset in any order should pass: %s", a.Failure)
}

func TestJudgeContainsMissingDecl(t *testing.T) {
	stream := `/* Test: subset fails */
/* ASSERT: subset fails */
/* OUTPUT */
.card { margin: 0; }
/* END_OUTPUT */
/* CONTAINS */
.card { color: red; }
/* END_CONTAINS */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.False(t, a.Passed)
	assert.Contains(t, a.Failure, `no rule matching ".card" contains`)
	assert.Contains(t, a.Failure, "color: red;")
}

func TestJudgeNeedle(t *testing.T) {
	stream := `/* Test: substring */
/* ASSERT: substring */
/* OUTPUT */
.btn { color: red; }
/* END_OUTPUT */
/* CONTAINS_STRING */
/* color: red; */
/* END_CONTAINS_STRING */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	require.True(t, a.HasNeedle)
	assert.Equal(t, "color: red;", a.Needle)
	assert.True(t, a.Passed)
}

func TestJudgeNeedleMissing(t *testing.T) {
	stream := `/* Test: substring miss */
/* ASSERT: substring miss */
/* OUTPUT */
.btn { color: blue; }
/* END_OUTPUT */
/* CONTAINS_STRING */
/* color: red; */
/* END_CONTAINS_STRING */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.False(t, a.Passed)
	assert.Contains(t, a.Failure, `does not contain "color: red;"`)
}

func TestOutputOnlyIsExternal(t *testing.T) {
	stream := `/* Test: golden */
/* ASSERT: golden */
/* OUTPUT */
.btn { color: red; }
/* END_OUTPUT */
/* END_ASSERT */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	a := report.Tests()[0].Assertions[0]
	assert.True(t, a.External)
	assert.True(t, a.Passed, "external assertions default to pass until judged")
	require.Len(t, a.Output, 1)
}

func TestStandaloneNeedleFrameIsEvidenceOnly(t *testing.T) {
	stream := `/* Test: source check */
/* CONTAINS_STRING: uses brand color */
/* --brand: #c33; */
/* END_CONTAINS_STRING */
/*   ✔ [contains-string] uses brand color */
`
	report, err := Parse(stream)
	require.NoError(t, err)

	tests := report.Tests()
	require.Len(t, tests, 1)
	require.Len(t, tests[0].Assertions, 1, "standalone frames must not double count")
	assert.Equal(t, ValueAssertion, tests[0].Assertions[0].Kind)
	assert.True(t, tests[0].Assertions[0].Passed)
}

func TestStreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"unclosed assert", "/* ASSERT: x */\n", "unclosed ASSERT"},
		{"stray end assert", "/* END_ASSERT */\n", "END_ASSERT without matching"},
		{"stray end output", "/* ASSERT: x */\n/* END_OUTPUT */\n", "END_OUTPUT without matching"},
		{"nested assert", "/* ASSERT: x */\n/* ASSERT: y */\n", "nested ASSERT"},
		{"frame inside frame", "/* ASSERT: x */\n/* OUTPUT */\n/* EXPECT */\n", "EXPECT frame opened inside OUTPUT"},
		{"assert closed with open frame", "/* ASSERT: x */\n/* OUTPUT */\n/* END_ASSERT */\n", "OUTPUT frame still open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.stream)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestModuleBoundariesResetTests(t *testing.T) {
	stream := `/* # Module: one */
/* Test: a */
/*   ✔ [assert-true] a */
/* # Module: two */
/* Test: b */
/*   ✔ [assert-true] b */
`
	report, err := Parse(stream)
	require.NoError(t, err)
	require.Len(t, report.Modules, 2)
	assert.Equal(t, "one", report.Modules[0].Name)
	assert.Equal(t, "two", report.Modules[1].Name)
	require.Len(t, report.Modules[0].Tests, 1)
	require.Len(t, report.Modules[1].Tests, 1)
}

func TestSummaryLinesIgnored(t *testing.T) {
	report, err := Parse(passingStream)
	require.NoError(t, err)
	for _, m := range report.Modules {
		assert.False(t, strings.Contains(m.Name, "SUMMARY"))
	}
}
