package config

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		ContainerSelector: ".test-output",
		Reporters:         []string{"console"},
		Details:           BoolPtr(true),
	}
}

// IsDefault reports whether the config matches the defaults.
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.ContainerSelector == defaults.ContainerSelector &&
		len(c.Reporters) == 1 && c.Reporters[0] == "console" &&
		c.OutputDir == "" &&
		c.HistoryDB == "" &&
		c.EnvFile == "" &&
		len(c.Vars) == 0 &&
		len(c.Tags) == 0 &&
		c.GetTerminalOutput() == defaults.GetTerminalOutput() &&
		c.GetDetails() == defaults.GetDetails() &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.GetUpdateSnapshots() == defaults.GetUpdateSnapshots() &&
		c.GetCoverage() == defaults.GetCoverage()
}
