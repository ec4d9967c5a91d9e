// Package css reads and writes the small CSS dialect that flows through
// a test run.
//
// The Writer emits comments, rules and declarations with stable
// two-space indentation, so that report streams are deterministic and
// diffable. The parser is the inverse: it turns a report stream or a
// plain stylesheet back into comments and rules, preserving order and
// line numbers. It is deliberately tolerant, handling only what the
// framework and ordinary build artifacts need: top-level comments,
// flat rules, custom properties and @-rule blocks (whose inner rules are
// flattened).
package css
