package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheetspec/sheetspec/packages/session"
	"github.com/sheetspec/sheetspec/packages/value"
)

func newSession() (*session.Session, *bytes.Buffer, *bytes.Buffer) {
	report := &bytes.Buffer{}
	terminal := &bytes.Buffer{}
	s := session.New(
		session.WithReport(report),
		session.WithTerminal(terminal),
		session.WithTerminalOutput(true),
	)
	return s, report, terminal
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name string
		val  value.Value
		want string
	}{
		{"number", value.Number(5), "[number] 5"},
		{"dimension", value.Dimension(16, "px"), "[number] 16px"},
		{"string", value.String("red"), "[string] red"},
		{"null", value.Null(), "[null] null"},
		{"bool", value.Bool(false), "[bool] false"},
		{"list", value.List(value.Number(1), value.Number(2)), "[list] (1, 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inspect(tt.val))
		})
	}
}

func TestPassDetails(t *testing.T) {
	s, report, terminal := newSession()
	s.Context(session.KindTest, "adds numbers")
	s.Context(session.KindAssert, "[assert-equal] adds numbers")

	PassDetails(s)

	assert.Equal(t, "/*   ✔ [assert-equal] adds numbers */\n", report.String())
	assert.Empty(t, terminal.String())
}

func TestFailDetails(t *testing.T) {
	s, report, terminal := newSession()
	s.Context(session.KindTest, "adds numbers")
	s.Context(session.KindAssert, "[assert-equal] adds numbers")

	FailDetails(s, value.Number(5), value.Number(6), true)

	want := `/*   ✖ FAILED: [assert-equal] adds numbers */
/*     - Output: [number] 5 */
/*     - Expected: [number] 6 */
`
	assert.Equal(t, want, report.String())
	assert.Contains(t, terminal.String(), "warning: Test failed: [assert-equal] adds numbers")
	assert.Contains(t, terminal.String(), "Output: [number] 5")
}

func TestFailDetailsWithoutDetail(t *testing.T) {
	s, report, _ := newSession()
	s.Context(session.KindAssert, "[assert-true] checks flag")

	FailDetails(s, value.Bool(false), value.Bool(true), false)

	assert.Equal(t, "/*   ✖ FAILED: [assert-true] checks flag */\n", report.String())
	assert.NotContains(t, report.String(), "Expected")
}
