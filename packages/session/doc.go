// Package session holds the mutable state of one test run: the context
// stack of open module/test/assertion scopes, the current output mode,
// result bookkeeping and the message streams.
//
// A *Session is created per run and passed explicitly to every assertion
// and formatting helper; nothing in this module keeps global state, so
// independent runs can coexist in one process.
//
// Messages fan out to two streams. The "comments" category is written to
// the report stream as CSS comments and becomes part of the annotated
// output; "debug" and "warn" go to the terminal stream for humans
// watching the run.
//
// Misuse of the lifecycle, such as popping an empty context stack or
// recording a result with no open test, is an engine defect rather than
// a test failure and panics with *EngineError. Runners recover it at the
// suite boundary and report it separately from failing tests.
package session
