package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetspec/sheetspec/packages/core/parser"
	"github.com/sheetspec/sheetspec/packages/core/runner"
)

const scaffoldFixture = `:root {
  --brand: #336699;
  --gutter: 16px;
}

.btn {
  color: #336699;
  font-size: 16px;
  font-family: Georgia, serif;
}

.btn {
  color: #224466;
}

.badge::after {
  content: "new";
  margin: 0;
}

.empty {
}

.nav #logo {
  width: 120px;
}
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	cssPath := writeFixture(t, dir, "styles.css", scaffoldFixture)

	suite, err := NewGenerator().ConvertFile(cssPath)
	require.NoError(t, err)

	assert.Contains(t, suite, "# Generated from styles.css")
	assert.Contains(t, suite, "module: styles")
	assert.Contains(t, suite, "source: styles.css")

	// Custom properties become a single token test.
	assert.Contains(t, suite, "- name: design tokens")
	assert.Contains(t, suite, "of: var(--brand)")
	assert.Contains(t, suite, `to: "#336699"`)
	assert.Contains(t, suite, "of: var(--gutter)")
	assert.Contains(t, suite, "to: 16px")

	// The second .btn rule overrides color, and only the winning value
	// is pinned.
	assert.Contains(t, suite, "- name: .btn")
	assert.Contains(t, suite, "of: decl(.btn, color)")
	assert.Contains(t, suite, `to: "#224466"`)
	assert.Equal(t, 1, strings.Count(suite, `to: "#336699"`), "overridden value should only appear as the token")
	assert.Contains(t, suite, "of: decl(.btn, font-family)")
	assert.Contains(t, suite, "to: Georgia, serif")

	// CSS string values keep their quotes.
	assert.Contains(t, suite, "of: decl(.badge::after, content)")
	assert.Contains(t, suite, `to: "new"`)
	assert.Contains(t, suite, "to: 0")

	// Rules without declarations produce nothing.
	assert.NotContains(t, suite, ".empty")

	// Selectors with a descendant id part are noted, not asserted.
	assert.Contains(t, suite, "# skipped: .nav #logo")
	assert.NotContains(t, suite, "- name: .nav #logo")
}

func TestConvertFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cssPath := writeFixture(t, dir, "styles.css", scaffoldFixture)

	text, err := NewGenerator().ConvertFile(cssPath)
	require.NoError(t, err)

	suitePath := writeFixture(t, dir, "styles.sheet.yaml", text)

	suite, err := parser.ParseFile(suitePath)
	require.NoError(t, err)
	assert.Equal(t, "styles", suite.Module)
	require.Len(t, suite.Tests, 3)
	assert.Equal(t, "design tokens", suite.Tests[0].Name)
	assert.Equal(t, ".btn", suite.Tests[1].Name)
	assert.Equal(t, ".badge::after", suite.Tests[2].Name)

	// A freshly generated suite pins current values, so it must pass
	// against the stylesheet it came from.
	result, err := runner.NewRunner(nil).RunFile(suitePath)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
}

func TestConvertFileMissing(t *testing.T) {
	_, err := NewGenerator().ConvertFile(filepath.Join(t.TempDir(), "nope.css"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}

func TestConvertFileInvalidCSS(t *testing.T) {
	dir := t.TempDir()
	cssPath := writeFixture(t, dir, "broken.css", ".btn { color: red;")

	_, err := NewGenerator().ConvertFile(cssPath)
	require.Error(t, err)
}

func TestWithModule(t *testing.T) {
	dir := t.TempDir()
	cssPath := writeFixture(t, dir, "styles.css", ".btn { color: red; }")

	suite, err := NewGenerator(WithModule("buttons")).ConvertFile(cssPath)
	require.NoError(t, err)
	assert.Contains(t, suite, "module: buttons")
}

func TestConvertEmptyStylesheet(t *testing.T) {
	dir := t.TempDir()
	cssPath := writeFixture(t, dir, "empty.css", "/* nothing yet */\n")

	text, err := NewGenerator().ConvertFile(cssPath)
	require.NoError(t, err)
	assert.Contains(t, text, "- name: replace me")

	// The placeholder still parses as a valid suite.
	suitePath := writeFixture(t, dir, "empty.sheet.yaml", text)
	suite, err := parser.ParseFile(suitePath)
	require.NoError(t, err)
	require.Len(t, suite.Tests, 1)
}

func TestNeedsQuote(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"red", false},
		{"16px", false},
		{"Georgia, serif", false},
		{"decl(.btn, color)", false},
		{"var(--brand)", false},
		{".btn:hover", false},
		{"-webkit-box", false},
		{"-2px", false},
		{":root", false},
		{"url(https://example.com/a.png)", false},
		{"", true},
		{"#336699", true},
		{"- item", true},
		{"-", true},
		{"a: b", true},
		{"note # tail", true},
		{"trailing ", true},
		{"@media", true},
		{"*", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, needsQuote(tt.in), "needsQuote(%q)", tt.in)
		})
	}
}

func TestValueScalar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"red", "red"},
		{"16px", "16px"},
		{"#fff", `"#fff"`},
		{`"new"`, `"new"`},
		{"'liga' 1", `"'liga' 1"`},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, valueScalar(tt.in))
		})
	}
}
