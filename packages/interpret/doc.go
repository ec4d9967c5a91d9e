// Package interpret reads an annotated report stream back into modules,
// tests and assertions, and judges the block assertions that could not
// be decided while the stream was being written.
//
// Value assertions carry their verdict in the stream as ✔ and ✖ comment
// lines; the interpreter only collects those. Block assertions carry
// their evidence instead: an OUTPUT frame plus an EXPECT, CONTAINS or
// CONTAINS_STRING frame. The interpreter pairs the frames inside each
// ASSERT block and compares parsed rules (exact for EXPECT, subset for
// CONTAINS) or raw text (CONTAINS_STRING). An ASSERT block holding only
// an OUTPUT frame is marked external; snapshot comparison owns its
// verdict.
package interpret
