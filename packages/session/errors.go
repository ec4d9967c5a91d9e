package session

import "fmt"

// EngineError reports a violation of the assertion lifecycle: unbalanced
// context push/pop, bookkeeping outside an open test, or an unknown
// block type. These are defects in the harness or in generated suites,
// never ordinary test failures, and are raised by panicking so that a
// runner can recover them at the suite boundary.
type EngineError struct {
	Op      string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %s: %s", e.Op, e.Message)
}

// Fatalf panics with an *EngineError for the given lifecycle operation.
func Fatalf(op, format string, args ...any) {
	panic(&EngineError{Op: op, Message: fmt.Sprintf(format, args...)})
}

// AsEngineError unwraps a recovered panic value. It returns nil when the
// value is not an *EngineError, in which case the caller should re-panic.
func AsEngineError(recovered any) *EngineError {
	if recovered == nil {
		return nil
	}
	if err, ok := recovered.(*EngineError); ok {
		return err
	}
	return nil
}
