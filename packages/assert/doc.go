// Package assert implements the assertion engine: value assertions that
// judge inline, and block formatters that frame CSS output for
// comparison after the run.
//
// Every assertion follows the same lifecycle against a session:
//
//	Setup   pushes an assertion scope labeled "[name] description"
//	judge   derives pass/fail (value assertions only)
//	Strike  records the verdict, counts the assertion and retires the scope
//
// Value assertions (Equal, Unequal, True, False) complete the whole
// lifecycle themselves and write their verdict into the report stream as
// it happens. Block assertions only frame their output between marker
// comments such as /* OUTPUT */ ... /* END_OUTPUT */; pairing and
// judging those frames is the interpreter's job, because the compiled
// CSS is not comparable until the stream is complete.
package assert
