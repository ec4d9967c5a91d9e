package session

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/sheetspec/sheetspec/packages/value"
)

// Result is the verdict of a single assertion or of a whole test.
type Result string

const (
	Pass Result = "pass"
	Fail Result = "fail"
)

// Merge folds another verdict into this one. A failure is permanent: once
// a test has recorded a fail, later passes never clear it.
func (r Result) Merge(other Result) Result {
	if r == Fail || other == Fail {
		return Fail
	}
	return Pass
}

// Category selects the destination stream of a message.
type Category string

const (
	// Comments messages are embedded in the report stream as CSS comments.
	Comments Category = "comments"
	// Debug messages go to the terminal stream when terminal output is on.
	Debug Category = "debug"
	// Warn messages always go to the terminal stream.
	Warn Category = "warn"
)

// Kind classifies a context frame.
type Kind string

const (
	KindModule Kind = "module"
	KindTest   Kind = "test"
	KindAssert Kind = "assert"
)

// Counter names used by the lifecycle bookkeeping.
const (
	StatModules    = "modules"
	StatTests      = "tests"
	StatAssertions = "assertions"
)

type frame struct {
	kind   Kind
	label  string
	result Result
	judged bool
}

// Session is the mutable state of one run: context stack, output mode,
// counters and the two message streams. It is not safe for concurrent
// use; a run is single threaded by design.
type Session struct {
	id             string
	stack          []frame
	mode           string
	counters       map[string]int
	report         io.Writer
	terminal       io.Writer
	terminalOutput bool
	container      string
}

type Option func(*Session)

// WithReport directs the annotated CSS stream to w.
func WithReport(w io.Writer) Option {
	return func(s *Session) { s.report = w }
}

// WithTerminal directs debug and warning messages to w.
func WithTerminal(w io.Writer) Option {
	return func(s *Session) { s.terminal = w }
}

// WithTerminalOutput toggles the debug stream.
func WithTerminalOutput(on bool) Option {
	return func(s *Session) { s.terminalOutput = on }
}

// WithContainerSelector overrides the selector wrapped around block
// assertion bodies. Default is ".test-output".
func WithContainerSelector(sel string) Option {
	return func(s *Session) {
		if sel != "" {
			s.container = sel
		}
	}
}

// WithID pins the run identifier instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func New(opts ...Option) *Session {
	s := &Session{
		id:        uuid.New().String(),
		counters:  make(map[string]int),
		report:    os.Stdout,
		terminal:  os.Stderr,
		container: ".test-output",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the run identifier.
func (s *Session) ID() string { return s.id }

// Report exposes the report stream so formatters can emit raw CSS
// between comment markers.
func (s *Session) Report() io.Writer { return s.report }

// ContainerSelector returns the selector block assertions wrap their
// declarations in.
func (s *Session) ContainerSelector() string { return s.container }

// OutputContext records which block type is currently open in the
// report stream. An empty mode resets it.
func (s *Session) OutputContext(mode string) { s.mode = mode }

// OutputMode returns the recorded block type, "" when none is open.
func (s *Session) OutputMode() string { return s.mode }

// Context pushes a scope frame onto the context stack.
func (s *Session) Context(kind Kind, label string) {
	s.stack = append(s.stack, frame{kind: kind, label: label})
}

// ContextOf returns the label of the innermost frame of the given kind.
func (s *Session) ContextOf(kind Kind) (string, bool) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].kind == kind {
			return s.stack[i].label, true
		}
	}
	return "", false
}

// ContextPop retires the innermost frame. Popping an empty stack is an
// engine defect.
func (s *Session) ContextPop() {
	if len(s.stack) == 0 {
		Fatalf("context-pop", "context stack is empty")
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// Depth reports how many frames are open.
func (s *Session) Depth() int { return len(s.stack) }

// UpdateTest folds an assertion verdict into the innermost open test.
// Calling it with no test in progress is an engine defect.
func (s *Session) UpdateTest(r Result) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].kind != KindTest {
			continue
		}
		f := &s.stack[i]
		if f.judged {
			f.result = f.result.Merge(r)
		} else {
			f.result = r
			f.judged = true
		}
		return
	}
	Fatalf("update-test", "no test in progress")
}

// TestResult reads the verdict recorded against the innermost open test.
// ok is false when no verdict has been recorded yet.
func (s *Session) TestResult() (result Result, ok bool) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].kind == KindTest {
			return s.stack[i].result, s.stack[i].judged
		}
	}
	return "", false
}

// UpdateStatsCount increments a named counter. Counters only ever grow.
func (s *Session) UpdateStatsCount(name string) {
	s.counters[name]++
}

// Stats returns a copy of the counters.
func (s *Session) Stats() map[string]int {
	out := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

// GetResult compares two values and derives a verdict. With invert set
// the comparison expects inequality. The verdict is returned, never
// stored; recording is the caller's responsibility.
func (s *Session) GetResult(actual, expected value.Value, invert bool) Result {
	if value.Equal(actual, expected) != invert {
		return Pass
	}
	return Fail
}

// Message writes text to the stream selected by category. Multi-line
// comments are split so that every report line is a valid CSS comment.
func (s *Session) Message(text string, cat Category) {
	switch cat {
	case Comments:
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(s.report, "/* %s */\n", line)
		}
	case Debug:
		if s.terminalOutput {
			fmt.Fprintln(s.terminal, text)
		}
	case Warn:
		fmt.Fprintf(s.terminal, "warning: %s\n", text)
	default:
		Fatalf("message", "unknown message category: %q", cat)
	}
}
