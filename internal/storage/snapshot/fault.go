package snapshot

import (
	"fmt"
	"runtime/debug"
)

// FaultError carries a panic recovered during Save or Restore.
type FaultError struct {
	Op    string // "save" or "restore"
	Value any    // value passed to panic
	Stack []byte
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	return fmt.Sprintf("snapshot: %s panicked: %v", e.Op, e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *FaultError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newFault(op string, v any) *FaultError {
	return &FaultError{Op: op, Value: v, Stack: debug.Stack()}
}
