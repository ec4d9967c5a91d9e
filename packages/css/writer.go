package css

import (
	"fmt"
	"io"
	"strings"
)

// Writer emits CSS with two-space indentation. It tracks rule nesting so
// declarations written between BeginRule and EndRule are indented under
// their selector.
type Writer struct {
	w     io.Writer
	depth int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) pad() string {
	return strings.Repeat("  ", w.depth)
}

// Comment writes a CSS comment at the current indentation, one comment
// per input line.
func (w *Writer) Comment(text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w.w, "%s/* %s */\n", w.pad(), line)
	}
}

// BeginRule opens a rule block for selector.
func (w *Writer) BeginRule(selector string) {
	fmt.Fprintf(w.w, "%s%s {\n", w.pad(), selector)
	w.depth++
}

// EndRule closes the innermost open rule block.
func (w *Writer) EndRule() {
	if w.depth > 0 {
		w.depth--
	}
	fmt.Fprintf(w.w, "%s}\n", w.pad())
}

// Decl writes one declaration.
func (w *Writer) Decl(prop, val string) {
	fmt.Fprintf(w.w, "%s%s: %s;\n", w.pad(), prop, val)
}

// Rule writes a complete rule in one call.
func (w *Writer) Rule(r Rule) {
	w.BeginRule(r.Selector)
	for _, d := range r.Decls {
		w.Decl(d.Prop, d.Value)
	}
	w.EndRule()
}

// Raw re-indents pre-formatted CSS text line by line at the current
// depth. Blank lines are dropped.
func (w *Writer) Raw(css string) {
	for _, line := range strings.Split(css, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Fprintf(w.w, "%s%s\n", w.pad(), line)
	}
}
