// Package runner executes sheetspec suite files.
//
// A run has two halves. First the runner compiles every test into an
// annotated CSS report stream: module and test headers, inline pass and
// fail marks for value assertions, and marker-framed blocks for output
// assertions. Then the stream is handed to the interpret package, which
// pairs OUTPUT frames with their expectations and delivers the block
// verdicts the stream itself left open. Golden comparisons and
// suite-level substring checks are judged by the runner directly.
//
// The split mirrors how stylesheet tests run in a real build: the
// annotated CSS is a self-contained artifact that can be inspected,
// diffed or re-judged without re-running the suite.
package runner
