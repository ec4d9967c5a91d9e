package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetspec/sheetspec/packages/session"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const buttonSource = `:root {
  --brand: #7a2;
}
.btn {
  color: red;
  font-size: 16px;
}
.card {
  margin: 0;
}
`

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(nil)
		assert.NotNil(t, r)
		assert.NotNil(t, r.snapshots)
		assert.True(t, r.config.Details)
	})

	t.Run("with custom config", func(t *testing.T) {
		r := NewRunner(&Config{Verbose: true, Bail: true})
		assert.True(t, r.config.Verbose)
		assert.True(t, r.config.Bail)
	})
}

func TestRunner_RunFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "buttons.sheet.yaml", `module: buttons
source: source.css
tests:
  - name: button color
    assertions:
      - equal:
          of: decl(.btn, color)
          to: red
          description: brand color applied
      - equal:
          of: decl(.btn, font-size)
          to: 16px
      - is-falsy: decl(.ghost, color)
`)

	r := NewRunner(&Config{Details: true})
	result, err := r.RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, "buttons", result.Module)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].Passed)
	assert.Len(t, result.Results[0].Assertions, 3)
	assert.Equal(t, 3, result.Stats[session.StatAssertions])
	assert.Equal(t, 1, result.Stats[session.StatTests])

	assert.Contains(t, result.Report, "/* # Module: buttons */")
	assert.Contains(t, result.Report, "/* Test: button color */")
	assert.Contains(t, result.Report, "✔ [assert-equal] brand color applied")
}

func TestRunner_RunFile_WithFailingAssertion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "buttons.sheet.yaml", `module: buttons
source: source.css
tests:
  - name: wrong color
    assertions:
      - equal:
          of: decl(.btn, color)
          to: blue
          description: should fail
`)

	r := NewRunner(&Config{Details: true})
	result, err := r.RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 1)
	require.Len(t, result.Results[0].Assertions, 1)

	failed := result.Results[0].Assertions[0]
	assert.False(t, failed.Passed)
	assert.Equal(t, "[string] red", failed.Actual)
	assert.Equal(t, "[string] blue", failed.Expected)
	assert.Contains(t, result.Report, "✖ FAILED: [assert-equal] should fail")
}

func TestRunner_RunFile_VarQuery(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "tokens.sheet.yaml", `source: source.css
tests:
  - name: brand token
    assertions:
      - equal:
          of: var(--brand)
          to: "#7a2"
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, "tokens", result.Module)
}

func TestRunner_RunFile_WithSkip(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "skipped.sheet.yaml", `module: skipped
tests:
  - name: not yet
    skip: waiting on design review
    assertions:
      - is-truthy: "yes"
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, result.Results[0].Skipped)
	assert.Equal(t, "waiting on design review", result.Results[0].SkipReason)
}

func TestRunner_Filters(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "mixed.sheet.yaml", `module: mixed
tests:
  - name: button hover
    tags: [interactive]
    assertions:
      - is-truthy: "yes"
  - name: card layout
    tags: [layout]
    assertions:
      - is-truthy: "yes"
`)

	t.Run("by name", func(t *testing.T) {
		result, err := NewRunner(&Config{NameFilter: "button*"}).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Passed)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, "filtered out", result.Results[1].SkipReason)
	})

	t.Run("by tag", func(t *testing.T) {
		result, err := NewRunner(&Config{TagsFilter: []string{"layout"}}).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Passed)
		assert.True(t, result.Results[0].Skipped)
		assert.False(t, result.Results[1].Skipped)
	})
}

func TestRunner_WhenCondition(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "cond.sheet.yaml", `module: cond
tests:
  - name: fast only
    when: vars.mode == "fast"
    assertions:
      - is-truthy: "yes"
`)

	t.Run("condition holds", func(t *testing.T) {
		result, err := NewRunner(&Config{Vars: map[string]string{"mode": "fast"}}).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Passed)
	})

	t.Run("condition fails", func(t *testing.T) {
		result, err := NewRunner(&Config{Vars: map[string]string{"mode": "slow"}}).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Contains(t, result.Results[0].SkipReason, "when:")
	})
}

func TestRunner_OutputExpect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "output.sheet.yaml", `module: output
source: source.css
tests:
  - name: matching output
    assertions:
      - output:
          given: "color: red; margin: 0"
          expect: "color: red; margin: 0"
          description: identical declarations
  - name: mismatched output
    assertions:
      - output:
          given: "color: red"
          expect: "color: blue"
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)

	assert.True(t, result.Results[0].Passed)
	require.Len(t, result.Results[1].Assertions, 1)
	assert.Contains(t, result.Results[1].Assertions[0].Failure, "got { color: red; }")

	assert.Contains(t, result.Report, "/* ASSERT: identical declarations */")
	assert.Contains(t, result.Report, "/* OUTPUT */")
	assert.Contains(t, result.Report, "/* EXPECT */")
	assert.Contains(t, result.Report, ".test-output {")
	assert.Contains(t, result.Report, "/* END_ASSERT */")
}

func TestRunner_OutputFromSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "from.sheet.yaml", `module: from
source: source.css
tests:
  - name: button rule
    assertions:
      - output:
          from: .btn
          contains: "color: red"
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Contains(t, result.Report, "/* CONTAINS */")
}

func TestRunner_OutputNeedle(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "needle.sheet.yaml", `module: needle
tests:
  - name: substring present
    assertions:
      - output:
          given: "content: 'hello world'"
          needle: hello
  - name: substring absent
    assertions:
      - output:
          given: "content: 'hello world'"
          needle: goodbye
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Results[1].Assertions[0].Failure, `does not contain "goodbye"`)
}

func TestRunner_Snapshots(t *testing.T) {
	dir := t.TempDir()
	suiteText := `module: golden
tests:
  - name: stable output
    assertions:
      - output:
          given: "color: red"
          description: golden copy
`
	suite := writeFile(t, dir, "golden.sheet.yaml", suiteText)

	t.Run("missing golden fails", func(t *testing.T) {
		result, err := NewRunner(nil).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		failed := result.Results[0].Assertions[0]
		assert.True(t, failed.External)
		assert.Contains(t, failed.Failure, "snapshot does not exist")
	})

	t.Run("update mode creates golden", func(t *testing.T) {
		result, err := NewRunner(&Config{UpdateSnapshots: true}).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Passed)
		assert.Equal(t, "new snapshot created", result.Results[0].Assertions[0].Note)

		store := filepath.Join(dir, "__snapshots__", "golden.snap.json")
		_, statErr := os.Stat(store)
		assert.NoError(t, statErr)
	})

	t.Run("stored golden passes", func(t *testing.T) {
		result, err := NewRunner(nil).RunFile(suite)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Passed)
		assert.Empty(t, result.Results[0].Assertions[0].Note)
	})
}

func TestRunner_ContainsString(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "grep.sheet.yaml", `module: grep
source: source.css
tests:
  - name: token declared
    assertions:
      - contains-string: "--brand"
  - name: token missing
    assertions:
      - contains-string: "--accent"
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Report, "/* CONTAINS_STRING */")
	assert.Contains(t, result.Report, "✖ FAILED: [contains-string]")
}

func TestRunner_Bail(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "bail.sheet.yaml", `module: bail
tests:
  - name: first fails
    assertions:
      - is-truthy: ""
  - name: never runs
    assertions:
      - is-truthy: "yes"
`)

	result, err := NewRunner(&Config{Bail: true}).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Results, 1)
}

func TestRunner_Coverage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "source.css", buttonSource)
	suite := writeFile(t, dir, "cov.sheet.yaml", `module: cov
source: source.css
tests:
  - name: button color
    assertions:
      - equal:
          of: decl(.btn, color)
          to: red
`)

	result, err := NewRunner(&Config{Coverage: true}).RunFile(suite)

	require.NoError(t, err)
	require.NotNil(t, result.Coverage)
	assert.Equal(t, 3, result.Coverage.TotalSelectors)
	assert.Equal(t, 1, result.Coverage.CoveredSelectors)
	assert.Contains(t, result.Coverage.Uncovered, ".card")
	assert.Contains(t, result.Coverage.Uncovered, ":root")
}

func TestRunner_RunFile_ParseError(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "broken.sheet.yaml", `module: broken
tests:
  - name: bad assertion
    assertions:
      - explode: boom
`)

	_, err := NewRunner(nil).RunFile(suite)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown assertion kind")
}

func TestRunner_Timing(t *testing.T) {
	dir := t.TempDir()
	suite := writeFile(t, dir, "timed.sheet.yaml", `module: timed
tests:
  - name: one
    assertions:
      - is-truthy: "yes"
  - name: two
    assertions:
      - is-truthy: "yes"
`)

	result, err := NewRunner(nil).RunFile(suite)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Timing.TotalCount())
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"button color", "", true},
		{"button color", "button color", true},
		{"button color", "button*", true},
		{"button color", "*color", true},
		{"button color", "*tton*", true},
		{"button color", "card*", false},
		{"button color", "*layout", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesPattern(tt.name, tt.pattern), "%q vs %q", tt.name, tt.pattern)
	}
}
