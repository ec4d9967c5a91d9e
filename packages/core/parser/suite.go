package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssertionKind identifies what a suite assertion checks.
type AssertionKind int

const (
	AssertEqual AssertionKind = iota
	AssertUnequal
	AssertTruthy
	AssertFalsy
	AssertOutput
	AssertContainsString
)

func (k AssertionKind) String() string {
	switch k {
	case AssertEqual:
		return "equal"
	case AssertUnequal:
		return "unequal"
	case AssertTruthy:
		return "is-truthy"
	case AssertFalsy:
		return "is-falsy"
	case AssertOutput:
		return "output"
	case AssertContainsString:
		return "contains-string"
	default:
		return "unknown"
	}
}

var assertionKinds = map[string]AssertionKind{
	"equal":           AssertEqual,
	"unequal":         AssertUnequal,
	"is-truthy":       AssertTruthy,
	"is-falsy":        AssertFalsy,
	"output":          AssertOutput,
	"contains-string": AssertContainsString,
}

// Literal is a scalar payload from the suite file. Quoted records
// whether the author wrote it in quotes, which pins the value to a
// string instead of letting it be read as a number or keyword.
type Literal struct {
	Raw    string
	Quoted bool
	IsSet  bool
}

// Assertion is one check inside a test case.
type Assertion struct {
	Kind        AssertionKind
	Of          Literal
	To          Literal
	Description string
	Inspect     bool
	Given       string
	From        string
	Expect      string
	Contains    string
	Needle      string
	Snapshot    bool
	Selector    *bool
	Line        int
}

// WrapSelector reports whether the output block should be wrapped in the
// container selector. Defaults to true.
func (a *Assertion) WrapSelector() bool {
	if a.Selector == nil {
		return true
	}
	return *a.Selector
}

// TestCase is one named test with its assertions.
type TestCase struct {
	Name       string
	Tags       []string
	Skip       bool
	SkipReason string
	When       string
	Assertions []*Assertion
	Line       int
}

// HasTag reports whether the test carries the given tag.
func (t *TestCase) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the test carries at least one of the tags.
func (t *TestCase) HasAnyTag(tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

// Suite is one parsed *.sheet.yaml file.
type Suite struct {
	Path   string
	Module string
	Source string
	Vars   map[string]string
	Tests  []*TestCase
}

// SourcePath resolves the source stylesheet relative to the suite file.
func (s *Suite) SourcePath() string {
	if s.Source == "" {
		return ""
	}
	if filepath.IsAbs(s.Source) || s.Path == "" {
		return s.Source
	}
	return filepath.Join(filepath.Dir(s.Path), s.Source)
}

// ParseError reports a malformed suite file.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Message
	}
	if e.File != "" {
		return e.File + ": " + e.Message
	}
	return e.Message
}

// ParseFile reads and parses one suite file.
func ParseFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}
	return Parse(data, path)
}

// Parse parses suite data. path is used for error messages and for
// resolving the source stylesheet.
func Parse(data []byte, path string) (*Suite, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{File: path, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{File: path, Message: "suite file is empty"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{File: path, Line: root.Line, Message: "suite must be a mapping"}
	}

	s := &Suite{Path: path, Vars: map[string]string{}}
	p := &suiteParser{file: path}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "module":
			s.Module = val.Value
		case "source":
			s.Source = val.Value
		case "vars":
			if err := p.parseVars(val, s.Vars); err != nil {
				return nil, err
			}
		case "tests":
			tests, err := p.parseTests(val)
			if err != nil {
				return nil, err
			}
			s.Tests = tests
		default:
			return nil, p.errf(key.Line, "unknown suite key %q", key.Value)
		}
	}
	if s.Module == "" {
		s.Module = moduleFromPath(path)
	}
	return s, nil
}

func moduleFromPath(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	for _, ext := range []string{".yaml", ".yml"} {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, ".sheet")
}

type suiteParser struct {
	file string
}

func (p *suiteParser) errf(line int, format string, args ...any) error {
	return &ParseError{File: p.file, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (p *suiteParser) parseVars(node *yaml.Node, into map[string]string) error {
	if node.Kind != yaml.MappingNode {
		return p.errf(node.Line, "vars must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return p.errf(val.Line, "var %q must be a scalar", key.Value)
		}
		into[key.Value] = val.Value
	}
	return nil
}

func (p *suiteParser) parseTests(node *yaml.Node) ([]*TestCase, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, p.errf(node.Line, "tests must be a sequence")
	}
	var tests []*TestCase
	for _, item := range node.Content {
		t, err := p.parseTest(item)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, nil
}

func (p *suiteParser) parseTest(node *yaml.Node) (*TestCase, error) {
	if node.Kind != yaml.MappingNode {
		return nil, p.errf(node.Line, "test must be a mapping")
	}
	t := &TestCase{Line: node.Line}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			t.Name = val.Value
		case "tags":
			tags, err := p.parseStrings(val, "tags")
			if err != nil {
				return nil, err
			}
			t.Tags = tags
		case "skip":
			if err := p.parseSkip(val, t); err != nil {
				return nil, err
			}
		case "when":
			t.When = val.Value
		case "assertions":
			if val.Kind != yaml.SequenceNode {
				return nil, p.errf(val.Line, "assertions must be a sequence")
			}
			for _, item := range val.Content {
				a, err := p.parseAssertion(item)
				if err != nil {
					return nil, err
				}
				t.Assertions = append(t.Assertions, a)
			}
		default:
			return nil, p.errf(key.Line, "unknown test key %q", key.Value)
		}
	}
	if t.Name == "" {
		return nil, p.errf(node.Line, "test is missing a name")
	}
	return t, nil
}

func (p *suiteParser) parseStrings(node *yaml.Node, what string) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, p.errf(node.Line, "%s must be a sequence", what)
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, p.errf(item.Line, "%s entries must be scalars", what)
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func (p *suiteParser) parseSkip(node *yaml.Node, t *TestCase) error {
	if node.Kind != yaml.ScalarNode {
		return p.errf(node.Line, "skip must be a boolean or a reason string")
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return p.errf(node.Line, "skip must be a boolean or a reason string")
		}
		t.Skip = b
		return nil
	}
	t.Skip = true
	t.SkipReason = node.Value
	return nil
}

// assertion body keys permitted per kind
var allowedKeys = map[AssertionKind]map[string]bool{
	AssertEqual:          {"of": true, "to": true, "description": true, "inspect": true},
	AssertUnequal:        {"of": true, "to": true, "description": true, "inspect": true},
	AssertTruthy:         {"of": true, "description": true},
	AssertFalsy:          {"of": true, "description": true},
	AssertOutput:         {"given": true, "from": true, "expect": true, "contains": true, "needle": true, "snapshot": true, "selector": true, "description": true},
	AssertContainsString: {"needle": true, "description": true},
}

func (p *suiteParser) parseAssertion(node *yaml.Node) (*Assertion, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, p.errf(node.Line, "assertion must be a single-key mapping")
	}
	kindNode, body := node.Content[0], node.Content[1]
	kind, ok := assertionKinds[kindNode.Value]
	if !ok {
		return nil, p.errf(kindNode.Line, "unknown assertion kind %q", kindNode.Value)
	}
	a := &Assertion{Kind: kind, Line: kindNode.Line}

	switch body.Kind {
	case yaml.ScalarNode:
		switch kind {
		case AssertTruthy, AssertFalsy:
			a.Of = literalFrom(body)
		case AssertContainsString:
			a.Needle = body.Value
		default:
			return nil, p.errf(body.Line, "%s does not take a bare scalar", kind)
		}
	case yaml.MappingNode:
		if err := p.parseAssertionBody(a, body); err != nil {
			return nil, err
		}
	default:
		return nil, p.errf(body.Line, "assertion body must be a mapping or scalar")
	}
	return a, p.validateAssertion(a)
}

func (p *suiteParser) parseAssertionBody(a *Assertion, node *yaml.Node) error {
	allowed := allowedKeys[a.Kind]
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if !allowed[key.Value] {
			return p.errf(key.Line, "%s does not take %q", a.Kind, key.Value)
		}
		if val.Kind != yaml.ScalarNode {
			return p.errf(val.Line, "%s.%s must be a scalar", a.Kind, key.Value)
		}
		switch key.Value {
		case "of":
			a.Of = literalFrom(val)
		case "to":
			a.To = literalFrom(val)
		case "description":
			a.Description = val.Value
		case "inspect":
			b, err := p.parseBool(val, "inspect")
			if err != nil {
				return err
			}
			a.Inspect = b
		case "given":
			a.Given = val.Value
		case "from":
			a.From = val.Value
		case "expect":
			a.Expect = val.Value
		case "contains":
			a.Contains = val.Value
		case "needle":
			a.Needle = val.Value
		case "snapshot":
			b, err := p.parseBool(val, "snapshot")
			if err != nil {
				return err
			}
			a.Snapshot = b
		case "selector":
			b, err := p.parseBool(val, "selector")
			if err != nil {
				return err
			}
			a.Selector = &b
		}
	}
	return nil
}

func (p *suiteParser) parseBool(node *yaml.Node, what string) (bool, error) {
	var b bool
	if err := node.Decode(&b); err != nil {
		return false, p.errf(node.Line, "%s must be true or false", what)
	}
	return b, nil
}

func (p *suiteParser) validateAssertion(a *Assertion) error {
	switch a.Kind {
	case AssertEqual, AssertUnequal:
		if !a.Of.IsSet || !a.To.IsSet {
			return p.errf(a.Line, "%s needs both of: and to:", a.Kind)
		}
	case AssertTruthy, AssertFalsy:
		if !a.Of.IsSet {
			return p.errf(a.Line, "%s needs of:", a.Kind)
		}
	case AssertOutput:
		if a.Given == "" && a.From == "" {
			return p.errf(a.Line, "output needs given: or from:")
		}
		if a.Given != "" && a.From != "" {
			return p.errf(a.Line, "output takes either given: or from:, not both")
		}
		expectations := 0
		if a.Expect != "" {
			expectations++
		}
		if a.Contains != "" {
			expectations++
		}
		if a.Needle != "" {
			expectations++
		}
		if a.Snapshot {
			expectations++
		}
		if expectations > 1 {
			return p.errf(a.Line, "output takes one of expect:, contains:, needle: or snapshot:")
		}
		if expectations == 0 {
			// No explicit expectation means golden comparison.
			a.Snapshot = true
		}
	case AssertContainsString:
		if a.Needle == "" {
			return p.errf(a.Line, "contains-string needs a needle")
		}
	}
	return nil
}

func literalFrom(node *yaml.Node) Literal {
	quoted := node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0
	return Literal{Raw: node.Value, Quoted: quoted, IsSet: true}
}
