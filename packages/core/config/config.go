package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the project-level sheetspec configuration.
type Config struct {
	ContainerSelector string            `json:"containerSelector,omitempty"`
	Reporters         []string          `json:"reporters,omitempty"`
	OutputDir         string            `json:"outputDir,omitempty"`
	HistoryDB         string            `json:"historyDb,omitempty"`
	EnvFile           string            `json:"envFile,omitempty"`
	Vars              map[string]string `json:"vars,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
	TerminalOutput    *bool             `json:"terminalOutput,omitempty"`
	Details           *bool             `json:"details,omitempty"`
	Bail              *bool             `json:"bail,omitempty"`
	Verbose           *bool             `json:"verbose,omitempty"`
	NoColor           *bool             `json:"noColor,omitempty"`
	UpdateSnapshots   *bool             `json:"updateSnapshots,omitempty"`
	Coverage          *bool             `json:"coverage,omitempty"`
}

// BoolPtr returns a pointer to a bool value.
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil.
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetTerminalOutput returns the debug-stream setting, defaulting to false.
func (c *Config) GetTerminalOutput() bool {
	return getBool(c.TerminalOutput, false)
}

// GetDetails returns the failure-detail setting, defaulting to true.
func (c *Config) GetDetails() bool {
	return getBool(c.Details, true)
}

// GetBail returns the bail setting, defaulting to false.
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false.
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false.
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetUpdateSnapshots returns the snapshot update setting, defaulting to false.
func (c *Config) GetUpdateSnapshots() bool {
	return getBool(c.UpdateSnapshots, false)
}

// GetCoverage returns the coverage setting, defaulting to false.
func (c *Config) GetCoverage() bool {
	return getBool(c.Coverage, false)
}

// ConfigFilenames contains the possible config file names.
var ConfigFilenames = []string{
	".sheetspec.config.json",
	"sheetspec.config.json",
	".sheetspecrc",
	".sheetspecrc.json",
}

// LoadConfig loads configuration from the specified path or searches for
// config files in the current directory.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Merge merges another config into this one, with other taking
// precedence. Boolean flags only override when explicitly set.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.ContainerSelector != "" {
		result.ContainerSelector = other.ContainerSelector
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.HistoryDB != "" {
		result.HistoryDB = other.HistoryDB
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.TerminalOutput != nil {
		result.TerminalOutput = other.TerminalOutput
	}
	if other.Details != nil {
		result.Details = other.Details
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.UpdateSnapshots != nil {
		result.UpdateSnapshots = other.UpdateSnapshots
	}
	if other.Coverage != nil {
		result.Coverage = other.Coverage
	}

	if len(other.Vars) > 0 {
		if result.Vars == nil {
			result.Vars = make(map[string]string)
		}
		for k, v := range other.Vars {
			result.Vars[k] = v
		}
	}
	if len(other.Tags) > 0 {
		result.Tags = other.Tags
	}
	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

// SaveConfig saves the configuration to a file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
