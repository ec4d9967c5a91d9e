// Package scaffold generates suite skeletons from existing stylesheets.
//
// The generated suite pins the stylesheet's current declarations with
// equal assertions, giving an untested stylesheet an instant regression
// net. Authors are expected to prune it down to the rules they care
// about.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sheetspec/sheetspec/packages/css"
)

// Generator converts a stylesheet into a *.sheet.yaml suite skeleton.
type Generator struct {
	module string
}

// Option is a functional option for Generator.
type Option func(*Generator)

// WithModule overrides the module name derived from the file name.
func WithModule(name string) Option {
	return func(g *Generator) {
		g.module = name
	}
}

// NewGenerator creates a new suite generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ConvertFile parses the stylesheet at path and returns the suite text.
// The generated source field references the stylesheet by base name, so
// the suite is meant to be written next to it.
func (g *Generator) ConvertFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	sheet, err := css.Parse(string(data), path)
	if err != nil {
		return "", err
	}

	module := g.module
	if module == "" {
		module = moduleName(path)
	}
	return g.Convert(sheet, module, filepath.Base(path)), nil
}

// ruleSummary is one selector's declarations merged across every rule
// that carries it, so the generated expectations match query semantics,
// where the last declaration wins.
type ruleSummary struct {
	selector string
	props    []string
	values   map[string]string
}

func (r *ruleSummary) add(d css.Decl) {
	if _, seen := r.values[d.Prop]; !seen {
		r.props = append(r.props, d.Prop)
	}
	r.values[d.Prop] = d.Value
}

// Convert renders a suite skeleton for a parsed stylesheet.
func (g *Generator) Convert(sheet *css.Stylesheet, module, source string) string {
	tokens := &ruleSummary{selector: ":root", values: make(map[string]string)}
	merged := make(map[string]*ruleSummary)
	var order []*ruleSummary

	for _, rule := range sheet.Rules() {
		for _, d := range rule.Decls {
			// Custom properties on :root are queryable through var();
			// everything else goes through decl().
			if rule.Selector == ":root" && strings.HasPrefix(d.Prop, "--") {
				tokens.add(d)
				continue
			}
			summary, ok := merged[rule.Selector]
			if !ok {
				summary = &ruleSummary{selector: rule.Selector, values: make(map[string]string)}
				merged[rule.Selector] = summary
				order = append(order, summary)
			}
			summary.add(d)
		}
	}

	var sb strings.Builder
	sb.WriteString("# Generated from ")
	sb.WriteString(source)
	sb.WriteString("\n")
	sb.WriteString("module: ")
	sb.WriteString(yamlScalar(module))
	sb.WriteString("\nsource: ")
	sb.WriteString(yamlScalar(source))
	sb.WriteString("\n\ntests:\n")

	wrote := false

	if len(tokens.props) > 0 {
		writeTestName(&sb, "design tokens")
		for _, prop := range tokens.props {
			writeEqual(&sb, "var("+prop+")", tokens.values[prop])
		}
		wrote = true
	}

	for _, summary := range order {
		// A selector with a descendant id part cannot be written as a
		// plain YAML scalar, which queries require; leave a note
		// instead of a broken assertion.
		if strings.Contains(summary.selector, " #") {
			sb.WriteString("  # skipped: ")
			sb.WriteString(summary.selector)
			sb.WriteString(" (selector cannot appear in a plain-scalar query)\n")
			continue
		}

		writeTestName(&sb, summary.selector)
		for _, prop := range summary.props {
			writeEqual(&sb, "decl("+summary.selector+", "+prop+")", summary.values[prop])
		}
		wrote = true
	}

	if !wrote {
		// Keep the generated file parseable even for an empty
		// stylesheet; the author replaces the placeholder.
		sb.WriteString("  - name: replace me\n")
		sb.WriteString("    assertions:\n")
		sb.WriteString("      - is-truthy: \"yes\"\n")
	}

	return sb.String()
}

func writeTestName(sb *strings.Builder, name string) {
	sb.WriteString("  - name: ")
	sb.WriteString(yamlScalar(name))
	sb.WriteString("\n    assertions:\n")
}

func writeEqual(sb *strings.Builder, of, value string) {
	sb.WriteString("      - equal:\n")
	sb.WriteString("          of: ")
	sb.WriteString(yamlScalar(of))
	sb.WriteString("\n          to: ")
	sb.WriteString(valueScalar(value))
	sb.WriteString("\n")
}

// moduleName derives the module from the stylesheet file name.
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ".css")
}

// valueScalar renders a CSS value as a to: literal. A CSS string value
// keeps its quotes, so both sides of the assertion parse to the same
// string.
func valueScalar(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return strconv.Quote(v[1 : len(v)-1])
		}
	}
	return yamlScalar(v)
}

// yamlScalar renders s as a YAML plain scalar when possible, quoting it
// otherwise. Values stay plain whenever they can, because the suite
// parser reads quoted literals as strings rather than CSS values or
// queries.
func yamlScalar(s string) string {
	if needsQuote(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	switch s[0] {
	case '#', '@', '`', '"', '\'', '|', '>', '*', '&', '!', '%', '{', '[', '}', ']', ',', ' ':
		return true
	case '-', '?', ':':
		// Indicators only when a space follows, as in a block sequence.
		if len(s) == 1 || s[1] == ' ' {
			return true
		}
	}
	return strings.Contains(s, ": ") || strings.Contains(s, " #") ||
		strings.HasSuffix(s, " ") || strings.HasSuffix(s, ":") ||
		strings.ContainsAny(s, "\n\t")
}
