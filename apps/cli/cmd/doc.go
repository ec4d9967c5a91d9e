// Package cmd implements the sheetspec CLI commands using Cobra.
//
// Available commands:
//   - run: Evaluate stylesheet test suites
//   - validate: Check suite file syntax without evaluating
//   - list: Display all tests defined in suite files
//   - init: Create a new sheetspec project with example files
//   - import: Generate a suite skeleton from an existing stylesheet
//   - bench: Benchmark suite evaluation time
//   - history: Show recorded runs and the current green streak
//   - version: Show sheetspec version information
//
// The CLI supports various flags for filtering, output formatting,
// coverage and metrics export, notifications, run history, and watch
// mode for development workflows.
package cmd
