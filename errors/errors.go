// Package errors holds the error helpers shared across fetchsim packages.
package errors

import (
	"errors"
	"fmt"
)

// ErrPanicRecovery marks an error that was produced by recovering a panic.
var ErrPanicRecovery = errors.New("recovered from panic")

// PanicError carries a recovered panic value and the stack of the goroutine
// that panicked. The stack is kept out of Error() so the message stays short
// enough to show to a user; log Stack separately.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPanicRecovery, e.Value)
}

func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrPanicRecovery, err}
	}

	return []error{ErrPanicRecovery}
}

// Recovered converts the result of recover() into an error. It returns nil
// when nothing was recovered.
func Recovered(value any, stack []byte) error {
	if value == nil {
		return nil
	}

	return &PanicError{Value: value, Stack: stack}
}

// Collection is a thread-unsafe accumulator for validation errors.
// Use it when several independent checks should all be reported at once.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Addf appends a formatted error. The format may use %w.
func (c *Collection) Addf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Errorf(format, args...)) //nolint:err113
}

// HasError returns true if at least one error was added.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// GetError returns nil, the single error, or all errors joined.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
