// Package config handles configuration loading and management for
// sheetspec.
//
// It provides functionality for:
//   - Loading configuration from .sheetspec.config.json and .sheetspecrc files
//   - Default configuration values
//   - Merging file configuration with command-line overrides
package config
