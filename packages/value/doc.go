// Package value implements the stylesheet value model used by assertions.
//
// Values are a closed set of variants mirroring what a stylesheet
// expression can evaluate to:
//   - Null: the missing-value sentinel
//   - Bool: true / false
//   - Number: float64 magnitude with an optional unit
//   - String: a quoted or unquoted string
//   - List: an ordered sequence of values
//   - Map: an ordered set of key/value pairs
//
// The package provides structural equality (Equal), the truthiness rules
// used by assert-true / assert-false (Truthy), parsing of literal
// expressions as they appear in suite files (Parse), and conversion from
// JSON fixtures (FromJSON).
package value
