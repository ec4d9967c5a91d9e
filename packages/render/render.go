// Package render turns assertion outcomes into report and terminal
// messages. It owns the human-facing shape of pass marks, failure
// details and value inspection; the session only carries the streams.
package render

import (
	"fmt"

	"github.com/sheetspec/sheetspec/packages/session"
	"github.com/sheetspec/sheetspec/packages/value"
)

// Inspect renders a value with its type tag, e.g. "[number] 5".
func Inspect(v value.Value) string {
	return fmt.Sprintf("[%s] %s", v.TypeName(), v)
}

// PassDetails emits the pass mark for the current assertion scope.
func PassDetails(s *session.Session) {
	label, _ := s.ContextOf(session.KindAssert)
	s.Message("  ✔ "+label, session.Comments)
}

// FailDetails emits the failure record for the current assertion scope.
// With showDetail set the actual and expected values are included, typed
// and rendered, so the report alone is enough to diagnose the mismatch.
// The failure is also surfaced on the terminal stream.
func FailDetails(s *session.Session, actual, expected value.Value, showDetail bool) {
	label, _ := s.ContextOf(session.KindAssert)
	s.Message("  ✖ FAILED: "+label, session.Comments)
	if showDetail {
		s.Message("    - Output: "+Inspect(actual), session.Comments)
		s.Message("    - Expected: "+Inspect(expected), session.Comments)
	}
	s.Message(fmt.Sprintf("Test failed: %s\n  Output: %s\n  Expected: %s", label, Inspect(actual), Inspect(expected)), session.Warn)
}
