package assert

import (
	"bytes"
	"testing"

	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetspec/sheetspec/packages/css"
	"github.com/sheetspec/sheetspec/packages/session"
	"github.com/sheetspec/sheetspec/packages/value"
)

func newSession() (*session.Session, *bytes.Buffer) {
	report := &bytes.Buffer{}
	s := session.New(
		session.WithReport(report),
		session.WithTerminal(&bytes.Buffer{}),
	)
	return s, report
}

func inTest(s *session.Session, name string) {
	s.Context(session.KindModule, "demo")
	s.Context(session.KindTest, name)
}

func TestEqualPasses(t *testing.T) {
	s, report := newSession()
	inTest(s, "adds numbers")

	r := Equal(s, value.Number(5), value.Number(5), "adds numbers")

	tassert.Equal(t, session.Pass, r)
	tassert.Equal(t, "/*   ✔ [assert-equal] adds numbers */\n", report.String())
	tassert.Equal(t, 1, s.Stats()[session.StatAssertions])
	tassert.Equal(t, 2, s.Depth(), "assertion scope retired")

	got, ok := s.TestResult()
	require.True(t, ok)
	tassert.Equal(t, session.Pass, got)
}

func TestEqualFailsWithDetails(t *testing.T) {
	s, report := newSession()
	inTest(s, "adds numbers")

	r := Equal(s, value.Number(5), value.Number(6), "adds numbers")

	tassert.Equal(t, session.Fail, r)
	want := `/*   ✖ FAILED: [assert-equal] adds numbers */
/*     - Output: [number] 5 */
/*     - Expected: [number] 6 */
`
	tassert.Equal(t, want, report.String())

	got, ok := s.TestResult()
	require.True(t, ok)
	tassert.Equal(t, session.Fail, got)
}

func TestEqualWithoutDetail(t *testing.T) {
	s, report := newSession()
	inTest(s, "quiet failure")

	Equal(s, value.Number(5), value.Number(6), "", WithoutDetail())

	tassert.Contains(t, report.String(), "✖ FAILED")
	tassert.NotContains(t, report.String(), "Expected")
}

func TestUnequal(t *testing.T) {
	s, _ := newSession()
	inTest(s, "differs")

	tassert.Equal(t, session.Pass, Unequal(s, value.Number(5), value.Number(6), "differs"))
	tassert.Equal(t, session.Fail, Unequal(s, value.Number(5), value.Number(5), "differs"))
}

func TestTruthinessAssertions(t *testing.T) {
	tests := []struct {
		name   string
		val    value.Value
		truthy bool
	}{
		{"empty list is falsy", value.List(), false},
		{"list of zero is truthy", value.List(value.Number(0)), true},
		{"empty string is falsy", value.String(""), false},
		{"string zero is truthy", value.String("0"), true},
		{"null is falsy", value.Null(), false},
		{"zero is truthy", value.Number(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession()
			inTest(s, tt.name)

			wantTrue, wantFalse := session.Fail, session.Pass
			if tt.truthy {
				wantTrue, wantFalse = session.Pass, session.Fail
			}
			tassert.Equal(t, wantTrue, True(s, tt.val, ""))
			tassert.Equal(t, wantFalse, False(s, tt.val, ""))
		})
	}
}

func TestInspectedComparison(t *testing.T) {
	s, _ := newSession()
	inTest(s, "rendered forms")

	// Structurally different, renders identically.
	tassert.Equal(t, session.Fail, Equal(s, value.String("4px"), value.Dimension(4, "px"), "structural"))
	tassert.Equal(t, session.Pass, Equal(s, value.String("4px"), value.Dimension(4, "px"), "rendered", Inspected()))
}

func TestSetupDefaultsToTestLabel(t *testing.T) {
	s, report := newSession()
	inTest(s, "inherits label")

	Equal(s, value.Number(1), value.Number(1), "")

	tassert.Contains(t, report.String(), "✔ [assert-equal] inherits label")
}

func TestStrikeOrderAndOutputReset(t *testing.T) {
	s, _ := newSession()
	inTest(s, "lifecycle")

	Setup(s, "output", "framed block")
	s.OutputContext(TypeOutput)
	Strike(s, session.Pass, true)

	tassert.Equal(t, "", s.OutputMode(), "strike resets the output mode on request")
	tassert.Equal(t, 1, s.Stats()[session.StatAssertions])
	tassert.Equal(t, 2, s.Depth())

	Setup(s, "assert-equal", "keeps mode")
	s.OutputContext(TypeOutput)
	Strike(s, session.Pass, false)
	tassert.Equal(t, TypeOutput, s.OutputMode(), "plain strike leaves the output mode alone")
}

func TestStrikeWithoutScopePanics(t *testing.T) {
	s, _ := newSession()

	defer func() {
		err := session.AsEngineError(recover())
		require.NotNil(t, err)
		tassert.Equal(t, "update-test", err.Op)
	}()
	Strike(s, session.Pass, false)
}

func TestBlockWithContainer(t *testing.T) {
	s, report := newSession()
	inTest(s, "basic add")

	Block(s, TypeAssert, func(w *css.Writer) {
		w.Decl("color", "red")
	}, Description("basic add"))

	want := `/* ASSERT: basic add */
.test-output {
  color: red;
}
/* END_ASSERT */
`
	tassert.Equal(t, want, report.String())
	tassert.Equal(t, TypeAssert, s.OutputMode(), "mode persists until a strike resets it")
}

func TestBlockMarkerForms(t *testing.T) {
	tests := []struct {
		name      string
		blockType string
		desc      string
		wantOpen  string
	}{
		{"output stays short", TypeOutput, "", "/* OUTPUT */"},
		{"output with description", TypeOutput, "compiled", "/* OUTPUT: compiled */"},
		{"expect stays short", TypeExpect, "", "/* EXPECT */"},
		{"assert always long", TypeAssert, "named", "/* ASSERT: named */"},
		{"assert long even unlabeled", TypeAssert, "", "/* ASSERT:  */"},
		{"contains stays short", TypeContains, "", "/* CONTAINS */"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, report := newSession()
			inTest(s, "marker forms")

			var opts []BlockOption
			if tt.desc != "" {
				opts = append(opts, Description(tt.desc))
			}
			Block(s, tt.blockType, nil, opts...)

			lines := bytes.Split(bytes.TrimSpace(report.Bytes()), []byte("\n"))
			tassert.Equal(t, tt.wantOpen, string(lines[0]))
			tassert.Equal(t, "/* END_"+Marker(tt.blockType)+" */", string(lines[len(lines)-1]))
		})
	}
}

func TestBlockBare(t *testing.T) {
	s, report := newSession()
	inTest(s, "bare body")

	Block(s, TypeOutput, func(w *css.Writer) {
		w.Rule(css.Rule{Selector: ".btn", Decls: []css.Decl{{Prop: "margin", Value: "0"}}})
	}, Bare())

	want := `/* OUTPUT */
.btn {
  margin: 0;
}
/* END_OUTPUT */
`
	tassert.Equal(t, want, report.String())
}

func TestBlockEmptyBodyKeepsContainer(t *testing.T) {
	s, report := newSession()
	inTest(s, "empty output")

	Block(s, TypeOutput, nil)

	want := `/* OUTPUT */
.test-output {
}
/* END_OUTPUT */
`
	tassert.Equal(t, want, report.String())
}

func TestNestedBlocks(t *testing.T) {
	s, report := newSession()
	inTest(s, "pair")

	Block(s, TypeAssert, func(_ *css.Writer) {
		Block(s, TypeOutput, func(w *css.Writer) {
			w.Decl("color", "red")
		})
		Block(s, TypeExpect, func(w *css.Writer) {
			w.Decl("color", "red")
		})
	}, Description("pair"), Bare())

	want := `/* ASSERT: pair */
/* OUTPUT */
.test-output {
  color: red;
}
/* END_OUTPUT */
/* EXPECT */
.test-output {
  color: red;
}
/* END_EXPECT */
/* END_ASSERT */
`
	tassert.Equal(t, want, report.String())
	tassert.Equal(t, TypeExpect, s.OutputMode(), "innermost completed block leaves its mode")
}

func TestStringBlock(t *testing.T) {
	s, report := newSession()
	inTest(s, "substring")

	StringBlock(s, TypeContainsString, "color: red;")

	want := `/* CONTAINS_STRING */
/* color: red; */
/* END_CONTAINS_STRING */
`
	tassert.Equal(t, want, report.String())
	tassert.Equal(t, TypeContainsString, s.OutputMode())
}

func TestUnknownBlockTypePanics(t *testing.T) {
	s, _ := newSession()
	inTest(s, "bad block")

	defer func() {
		err := session.AsEngineError(recover())
		require.NotNil(t, err)
		tassert.Equal(t, "block", err.Op)
	}()
	Block(s, "mystery", nil)
}
