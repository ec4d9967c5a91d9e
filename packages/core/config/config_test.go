package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, ".test-output", c.ContainerSelector)
	assert.Equal(t, []string{"console"}, c.Reporters)
	assert.True(t, c.GetDetails())
	assert.False(t, c.GetTerminalOutput())
	assert.False(t, c.GetBail())
	assert.False(t, c.GetVerbose())
	assert.False(t, c.GetNoColor())
	assert.False(t, c.GetUpdateSnapshots())
	assert.False(t, c.GetCoverage())
	assert.True(t, c.IsDefault())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetspec.config.json")
	content := `{
  "containerSelector": ".spec-out",
  "reporters": ["console", "json"],
  "bail": true,
  "details": false,
  "vars": {"brand": "#c33"},
  "tags": ["smoke"]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ".spec-out", c.ContainerSelector)
	assert.Equal(t, []string{"console", "json"}, c.Reporters)
	assert.True(t, c.GetBail())
	assert.False(t, c.GetDetails())
	assert.Equal(t, "#c33", c.Vars["brand"])
	assert.Equal(t, []string{"smoke"}, c.Tags)
	assert.False(t, c.IsDefault())
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".sheetspecrc")
	require.NoError(t, os.WriteFile(path, []byte("{bad"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	// No config file: defaults.
	c, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, c.IsDefault())

	// Dotted name is found.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sheetspec.config.json"), []byte(`{"outputDir": "reports"}`), 0o644))
	c, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "reports", c.OutputDir)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Vars = map[string]string{"a": "1", "b": "2"}

	override := &Config{
		ContainerSelector: ".custom",
		Bail:              BoolPtr(true),
		Details:           BoolPtr(false),
		Vars:              map[string]string{"b": "override", "c": "3"},
		Reporters:         []string{"tap"},
	}

	merged := base.Merge(override)
	assert.Equal(t, ".custom", merged.ContainerSelector)
	assert.True(t, merged.GetBail())
	assert.False(t, merged.GetDetails())
	assert.Equal(t, "1", merged.Vars["a"])
	assert.Equal(t, "override", merged.Vars["b"])
	assert.Equal(t, "3", merged.Vars["c"])
	assert.Equal(t, []string{"tap"}, merged.Reporters)

	// Unset booleans in other must not clobber.
	assert.True(t, base.Merge(&Config{}).GetDetails())

	// Nil other is a no-op.
	assert.Equal(t, base, base.Merge(nil))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".sheetspecrc.json")

	c := DefaultConfig()
	c.OutputDir = "out"
	c.NoColor = BoolPtr(true)
	require.NoError(t, c.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out", loaded.OutputDir)
	assert.True(t, loaded.GetNoColor())
}
