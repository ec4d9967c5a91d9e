package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommentsAndRules(t *testing.T) {
	src := `/* ASSERT: basic add */
.test-output {
  color: red;
}
/* END_ASSERT */`

	sheet, err := Parse(src, "report.css")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 3)

	assert.Equal(t, CommentNode, sheet.Nodes[0].Type)
	assert.Equal(t, "ASSERT: basic add", sheet.Nodes[0].Text)
	assert.Equal(t, 1, sheet.Nodes[0].Line)

	rule := sheet.Nodes[1].Rule
	require.NotNil(t, rule)
	assert.Equal(t, ".test-output", rule.Selector)
	require.Len(t, rule.Decls, 1)
	assert.Equal(t, "color", rule.Decls[0].Prop)
	assert.Equal(t, "red", rule.Decls[0].Value)
	assert.Equal(t, 2, rule.Line)

	assert.Equal(t, "END_ASSERT", sheet.Nodes[2].Text)
	assert.Equal(t, 5, sheet.Nodes[2].Line)
}

func TestParseMissingSemicolonAndWhitespace(t *testing.T) {
	sheet, err := Parse(".a   .b {  color :  red  }", "")
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".a .b", rules[0].Selector)
	require.Len(t, rules[0].Decls, 1)
	assert.Equal(t, Decl{Prop: "color", Value: "red", Line: 1}, rules[0].Decls[0])
}

func TestParseCustomProperties(t *testing.T) {
	sheet, err := Parse(":root { --brand: #c33; --Spacing: 4px; }", "")
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 1)

	v, ok := rules[0].Lookup("--brand")
	require.True(t, ok)
	assert.Equal(t, "#c33", v)

	// Custom properties are case sensitive.
	_, ok = rules[0].Lookup("--spacing")
	assert.False(t, ok)
}

func TestParseShieldedDelimiters(t *testing.T) {
	sheet, err := Parse(`.a { background: url(data:image/png;base64,xyz); font-family: "a; b" }`, "")
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 1)
	require.Len(t, rules[0].Decls, 2)
	assert.Equal(t, "url(data:image/png;base64,xyz)", rules[0].Decls[0].Value)
	assert.Equal(t, `"a; b"`, rules[0].Decls[1].Value)
}

func TestParseAtRuleFlattening(t *testing.T) {
	src := `@media (min-width: 600px) {
  .wide { display: flex; }
}
.after { color: blue; }`

	sheet, err := Parse(src, "")
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "@media (min-width: 600px)", rules[0].Selector)
	assert.Empty(t, rules[0].Decls)
	assert.Equal(t, ".wide", rules[1].Selector)
	assert.Equal(t, ".after", rules[2].Selector)
}

func TestParseSkipsStatementAtRules(t *testing.T) {
	sheet, err := Parse(`@import "base.css"; .a { color: red; }`, "")
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".a", rules[0].Selector)
}

func TestParseEmptyRuleKept(t *testing.T) {
	sheet, err := Parse(".test-output {\n}", "")
	require.NoError(t, err)

	rules := sheet.Rules()
	require.Len(t, rules, 1)
	assert.Empty(t, rules[0].Decls)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unterminated comment", "/* oops", "unterminated comment"},
		{"unclosed block", ".a { color: red;", "unclosed block"},
		{"stray close", "}", "expected a rule or comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, "bad.css")
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "bad.css", perr.File)
			assert.Contains(t, perr.Message, tt.want)
		})
	}
}

func TestRuleEqualAndContains(t *testing.T) {
	a := Rule{Selector: ".x", Decls: []Decl{{Prop: "color", Value: "red"}, {Prop: "margin", Value: "0"}}}
	b := Rule{Selector: ".x", Decls: []Decl{{Prop: "color", Value: "red"}, {Prop: "margin", Value: "0"}}}
	reordered := Rule{Selector: ".x", Decls: []Decl{{Prop: "margin", Value: "0"}, {Prop: "color", Value: "red"}}}
	subset := Rule{Selector: ".x", Decls: []Decl{{Prop: "margin", Value: "0"}}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(reordered), "declaration order matters for equality")
	assert.True(t, a.ContainsDecls(subset))
	assert.True(t, a.ContainsDecls(reordered), "containment ignores order")
	assert.False(t, subset.ContainsDecls(a))
}

func TestParseDecls(t *testing.T) {
	decls, err := ParseDecls("color: red; margin: 0")
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "color", decls[0].Prop)
	assert.Equal(t, "margin", decls[1].Prop)

	empty, err := ParseDecls("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFormatRules(t *testing.T) {
	rules := []Rule{
		{Selector: ".a", Decls: []Decl{{Prop: "color", Value: "red"}}},
		{Selector: ".b"},
	}
	want := ".a {\n  color: red;\n}\n.b {\n}"
	assert.Equal(t, want, FormatRules(rules))
}

func TestRoundTrip(t *testing.T) {
	src := `/* header */
.card {
  color: red;
  padding: 1em 2em;
}`
	sheet, err := Parse(src, "")
	require.NoError(t, err)

	reparsed, err := Parse(FormatRules(sheet.Rules()), "")
	require.NoError(t, err)
	require.Len(t, reparsed.Rules(), 1)
	assert.True(t, sheet.Rules()[0].Equal(reparsed.Rules()[0]))
}
