package middlewares

import (
	"errors"
	"fmt"
)

// ErrAccountRequired is returned by Account when no account id can be resolved.
var ErrAccountRequired = errors.New("middlewares: account id required")

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
