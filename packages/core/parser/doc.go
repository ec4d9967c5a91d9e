// Package parser reads *.sheet.yaml suite files into the model the
// runner executes.
//
// A suite names a module, optionally points at the stylesheet artifact
// under test, declares variables for {{name}} interpolation, and lists
// tests. Each test holds assertions written as single-key mappings:
//
//	tests:
//	  - name: brand is red
//	    assertions:
//	      - equal:
//	          of: var(--brand)
//	          to: "#c33"
//	      - output:
//	          given: "color: red;"
//	          expect: "color: red;"
//
// Parsing is strict: unknown keys, unknown assertion kinds and missing
// required fields are reported as *ParseError with file and line, so a
// typo fails the run instead of silently skipping a check. Schema
// validation over the same shape is available separately for editor and
// CI integration.
package parser
