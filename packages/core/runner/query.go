package runner

import (
	"fmt"
	"strings"

	"github.com/sheetspec/sheetspec/packages/assert"
	"github.com/sheetspec/sheetspec/packages/core/parser"
	"github.com/sheetspec/sheetspec/packages/css"
	"github.com/sheetspec/sheetspec/packages/session"
	"github.com/sheetspec/sheetspec/packages/value"
)

// resolveLiteral turns a suite literal into a value. Quoted literals are
// taken verbatim as strings. Unquoted literals may query the source
// stylesheet:
//
//	var(--name)           custom property declared on :root
//	decl(selector, prop)  property of a rule, last declaration wins
//
// Anything else is read as a CSS value literal. A query whose target is
// missing resolves to null, so absence itself can be asserted.
func (run *fileRun) resolveLiteral(lit parser.Literal) value.Value {
	raw := run.resolver.Resolve(lit.Raw)
	if lit.Quoted {
		return value.String(raw)
	}
	if name, ok := varQuery(raw); ok {
		return run.lookupVar(name)
	}
	if selector, prop, ok := declQuery(raw); ok {
		if selector == "" || prop == "" {
			run.session.Message(fmt.Sprintf("malformed decl() query: %q", raw), session.Warn)
			return value.Null()
		}
		return run.lookupDecl(selector, prop)
	}
	return value.Parse(raw)
}

func varQuery(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "var(--") || !strings.HasSuffix(raw, ")") {
		return "", false
	}
	return strings.TrimSpace(raw[len("var(") : len(raw)-1]), true
}

// declQuery splits "decl(selector, prop)" at the last comma, since
// selectors may themselves contain commas inside :is() and friends.
func declQuery(raw string) (selector, prop string, ok bool) {
	if !strings.HasPrefix(raw, "decl(") || !strings.HasSuffix(raw, ")") {
		return "", "", false
	}
	args := raw[len("decl(") : len(raw)-1]
	idx := strings.LastIndex(args, ",")
	if idx < 0 {
		return "", "", true
	}
	return normalizeSelector(args[:idx]), strings.TrimSpace(args[idx+1:]), true
}

// lookupVar reads a custom property from the :root rules.
func (run *fileRun) lookupVar(name string) value.Value {
	run.touch(":root")
	text, found := "", false
	for _, rule := range run.sheet.Rules() {
		if normalizeSelector(rule.Selector) != ":root" {
			continue
		}
		if val, ok := rule.Lookup(name); ok {
			text, found = val, true
		}
	}
	if !found {
		return value.Null()
	}
	return value.Parse(text)
}

// lookupDecl reads a property from the rules matching selector. Across
// rules as within one, the last declaration wins, matching the cascade.
func (run *fileRun) lookupDecl(selector, prop string) value.Value {
	run.touch(selector)
	text, found := "", false
	for _, rule := range run.matchRules(selector) {
		if val, ok := rule.Lookup(prop); ok {
			text, found = val, true
		}
	}
	if !found {
		return value.Null()
	}
	return value.Parse(text)
}

func (run *fileRun) matchRules(selector string) []css.Rule {
	var out []css.Rule
	for _, rule := range run.sheet.Rules() {
		if normalizeSelector(rule.Selector) == selector {
			out = append(out, rule)
		}
	}
	return out
}

func (run *fileRun) touch(selector string) {
	run.touched = append(run.touched, selector)
}

func normalizeSelector(sel string) string {
	return strings.Join(strings.Fields(sel), " ")
}

// cssBody is the payload of an OUTPUT, EXPECT or CONTAINS frame: either
// bare declarations destined for the container selector, or complete
// rules emitted as they are.
type cssBody struct {
	wrap  bool
	decls []css.Decl
	rules []css.Rule
}

// parseBody reads a suite CSS block. Wrapped bodies are declaration
// lists; unwrapped bodies are complete rules.
func (run *fileRun) parseBody(text string, wrap bool) (*cssBody, error) {
	if wrap {
		decls, err := css.ParseDecls(text)
		if err != nil {
			return nil, err
		}
		return &cssBody{wrap: true, decls: decls}, nil
	}
	sheet, err := css.Parse(text, "")
	if err != nil {
		return nil, err
	}
	return &cssBody{rules: sheet.Rules()}, nil
}

// outputBody builds the OUTPUT frame payload from given: text or by
// copying the from: rule out of the source stylesheet.
func (run *fileRun) outputBody(t *parser.TestCase, a *parser.Assertion) (*cssBody, error) {
	if a.Given != "" {
		body, err := run.parseBody(run.resolver.Resolve(a.Given), a.WrapSelector())
		if err != nil {
			return nil, fmt.Errorf("test %q: parsing given block: %w", t.Name, err)
		}
		return body, nil
	}

	selector := normalizeSelector(run.resolver.Resolve(a.From))
	run.touch(selector)
	matched := run.matchRules(selector)
	if len(matched) == 0 {
		run.session.Message(fmt.Sprintf("test %q: from: no rule matches %q", t.Name, selector), session.Warn)
	}
	if a.WrapSelector() {
		body := &cssBody{wrap: true}
		for _, rule := range matched {
			body.decls = append(body.decls, rule.Decls...)
		}
		return body, nil
	}
	return &cssBody{rules: matched}, nil
}

// emit writes the body into the stream as a marker-framed block.
func (b *cssBody) emit(s *session.Session, blockType string) {
	if b.wrap {
		assert.Block(s, blockType, func(w *css.Writer) {
			for _, d := range b.decls {
				w.Decl(d.Prop, d.Value)
			}
		})
		return
	}
	assert.Block(s, blockType, func(w *css.Writer) {
		for _, r := range b.rules {
			w.Rule(r)
		}
	}, assert.Bare())
}

// text renders the body in the canonical rule shape used for golden
// comparison.
func (b *cssBody) text(container string) string {
	if b.wrap {
		return css.Rule{Selector: container, Decls: b.decls}.String()
	}
	return css.FormatRules(b.rules)
}
