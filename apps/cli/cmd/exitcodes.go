package cmd

import (
	"errors"

	"github.com/sheetspec/sheetspec/packages/core/parser"
	"github.com/sheetspec/sheetspec/packages/css"
	"github.com/sheetspec/sheetspec/packages/session"
)

// Exit codes for the sheetspec CLI
const (
	// ExitSuccess indicates all tests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite file parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitEngineError indicates an internal evaluation defect
	ExitEngineError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// usageError marks command-line misuse so Execute maps it to
// ExitUsageError.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// configError marks bad flag values and unreadable config files so
// Execute maps them to ExitConfigError.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// exitCodeFor classifies a command error into an exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var confErr *configError
	if errors.As(err, &confErr) {
		return ExitConfigError
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return ExitParseError
	}
	var cssErr *css.ParseError
	if errors.As(err, &cssErr) {
		return ExitParseError
	}
	var engineErr *session.EngineError
	if errors.As(err, &engineErr) {
		return ExitEngineError
	}
	return ExitTestFailure
}
