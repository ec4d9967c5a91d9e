package css

import (
	"strconv"
	"strings"
)

type NodeType int

const (
	// CommentNode is a top-level /* ... */ comment.
	CommentNode NodeType = iota
	// RuleNode is a selector with its declarations.
	RuleNode
)

// Node is one top-level item of a parsed stylesheet.
type Node struct {
	Type NodeType
	Text string // comment text, whitespace-trimmed
	Rule *Rule
	Line int
}

// Decl is a single declaration.
type Decl struct {
	Prop  string
	Value string
	Line  int
}

func (d Decl) String() string {
	return d.Prop + ": " + d.Value + ";"
}

func (d Decl) Equal(other Decl) bool {
	return d.Prop == other.Prop && d.Value == other.Value
}

// Rule is a selector with its direct declarations. Rules nested inside
// @-rule blocks are flattened to top level during parsing.
type Rule struct {
	Selector string
	Decls    []Decl
	Line     int
}

func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Selector)
	b.WriteString(" {\n")
	for _, d := range r.Decls {
		b.WriteString("  ")
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Equal reports whether two rules have the same selector and the same
// declarations in the same order.
func (r Rule) Equal(other Rule) bool {
	if r.Selector != other.Selector || len(r.Decls) != len(other.Decls) {
		return false
	}
	for i := range r.Decls {
		if !r.Decls[i].Equal(other.Decls[i]) {
			return false
		}
	}
	return true
}

// ContainsDecls reports whether every declaration of other appears in r,
// in any order.
func (r Rule) ContainsDecls(other Rule) bool {
	for _, want := range other.Decls {
		found := false
		for _, have := range r.Decls {
			if have.Equal(want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Lookup returns the value of a property declared in the rule. The last
// declaration wins, matching the cascade.
func (r Rule) Lookup(prop string) (string, bool) {
	val, ok := "", false
	for _, d := range r.Decls {
		if d.Prop == prop {
			val, ok = d.Value, true
		}
	}
	return val, ok
}

// Stylesheet is an ordered sequence of comments and rules.
type Stylesheet struct {
	Nodes []Node
}

// Rules returns the rule nodes in order.
func (s *Stylesheet) Rules() []Rule {
	var out []Rule
	for _, n := range s.Nodes {
		if n.Type == RuleNode {
			out = append(out, *n.Rule)
		}
	}
	return out
}

// Comments returns the comment texts in order.
func (s *Stylesheet) Comments() []string {
	var out []string
	for _, n := range s.Nodes {
		if n.Type == CommentNode {
			out = append(out, n.Text)
		}
	}
	return out
}

// FormatRules renders rules in the writer's canonical shape, one rule
// per block. Used when raw output text is needed for substring checks.
func FormatRules(rules []Rule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, "\n")
}

// ParseError reports where parsing stopped.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return "line " + strconv.Itoa(e.Line) + ": " + e.Message
}

type parser struct {
	src  string
	file string
	pos  int
	line int
}

// Parse reads a stylesheet or report stream. filename is used in error
// messages and may be empty.
func Parse(src, filename string) (*Stylesheet, error) {
	p := &parser{src: src, file: filename, line: 1}
	sheet := &Stylesheet{}
	for {
		p.skipSpace()
		if p.eof() {
			return sheet, nil
		}
		switch {
		case p.peek("/*"):
			line := p.line
			text, err := p.comment()
			if err != nil {
				return nil, err
			}
			sheet.Nodes = append(sheet.Nodes, Node{Type: CommentNode, Text: text, Line: line})
		default:
			line := p.line
			head, delim := p.chunk()
			switch delim {
			case '{':
				rules, err := p.block(normalizeSpace(head), line)
				if err != nil {
					return nil, err
				}
				for i := range rules {
					sheet.Nodes = append(sheet.Nodes, Node{Type: RuleNode, Rule: &rules[i], Line: rules[i].Line})
				}
			case ';':
				// Statement at-rule such as @import or @charset; nothing
				// the framework needs from it.
			default:
				return nil, &ParseError{File: p.file, Line: line, Message: "expected a rule or comment, got " + strconv.Quote(strings.TrimSpace(head))}
			}
		}
	}
}

// block parses the body of selector's rule. Nested rules become their
// own entries after the enclosing rule.
func (p *parser) block(selector string, line int) ([]Rule, error) {
	rule := Rule{Selector: selector, Line: line}
	var nested []Rule
	for {
		p.skipSpace()
		if p.eof() {
			return nil, &ParseError{File: p.file, Line: p.line, Message: "unclosed block for " + strconv.Quote(selector)}
		}
		if p.peek("/*") {
			if _, err := p.comment(); err != nil {
				return nil, err
			}
			continue
		}
		if p.src[p.pos] == '}' {
			p.advance(1)
			break
		}
		declLine := p.line
		head, delim := p.chunk()
		switch delim {
		case '{':
			inner, err := p.block(normalizeSpace(head), declLine)
			if err != nil {
				return nil, err
			}
			nested = append(nested, inner...)
		case ';':
			if d, ok := splitDecl(head, declLine); ok {
				rule.Decls = append(rule.Decls, d)
			}
		case '}':
			if d, ok := splitDecl(head, declLine); ok {
				rule.Decls = append(rule.Decls, d)
			}
			return append([]Rule{rule}, nested...), nil
		default:
			return nil, &ParseError{File: p.file, Line: p.line, Message: "unclosed block for " + strconv.Quote(selector)}
		}
	}
	return append([]Rule{rule}, nested...), nil
}

// chunk consumes text up to the next structural delimiter at the current
// nesting level and returns it with the delimiter, which is consumed for
// '{' and ';' but left for '}' handling in block. Parentheses and
// brackets shield delimiters inside values and selectors.
func (p *parser) chunk() (string, byte) {
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '"', '\'':
			p.skipString(c)
			continue
		case '{', ';':
			if depth == 0 {
				head := p.src[start:p.pos]
				p.advance(1)
				return head, c
			}
		case '}':
			if depth == 0 {
				head := p.src[start:p.pos]
				p.advance(1)
				return head, c
			}
		}
		p.advance(1)
	}
	return p.src[start:], 0
}

func splitDecl(text string, line int) (Decl, bool) {
	prop, val, found := strings.Cut(text, ":")
	if !found {
		return Decl{}, false
	}
	prop = strings.TrimSpace(prop)
	val = normalizeSpace(val)
	if prop == "" {
		return Decl{}, false
	}
	return Decl{Prop: prop, Value: val, Line: line}, true
}

func (p *parser) comment() (string, error) {
	line := p.line
	p.advance(2)
	end := strings.Index(p.src[p.pos:], "*/")
	if end < 0 {
		return "", &ParseError{File: p.file, Line: line, Message: "unterminated comment"}
	}
	text := p.src[p.pos : p.pos+end]
	p.advance(end + 2)
	return strings.TrimSpace(text), nil
}

func (p *parser) skipString(quote byte) {
	p.advance(1)
	for !p.eof() {
		c := p.src[p.pos]
		if c == '\\' {
			p.advance(2)
			continue
		}
		p.advance(1)
		if c == quote {
			return
		}
	}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.advance(1)
		default:
			return
		}
	}
}

func (p *parser) peek(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) advance(n int) {
	for i := 0; i < n && p.pos < len(p.src); i++ {
		if p.src[p.pos] == '\n' {
			p.line++
		}
		p.pos++
	}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseDecls reads a bare declaration list such as "color: red; margin: 0".
// Suites use this shorthand for expected output that lives in the
// default container.
func ParseDecls(src string) ([]Decl, error) {
	sheet, err := Parse("& {"+src+"}", "")
	if err != nil {
		return nil, err
	}
	rules := sheet.Rules()
	if len(rules) == 0 {
		return nil, nil
	}
	return rules[0].Decls, nil
}
