package fetchmachine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEvent is returned by Send for anything other than FETCH.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrMachineStopped is returned when interacting with a stopped machine.
	ErrMachineStopped = errors.New("machine is stopped")
	// ErrOperationRequired is returned by New when no Operation was given.
	ErrOperationRequired = errors.New("an operation is required")

	// ErrDefinitionNameRequired indicates that a definition name is required.
	ErrDefinitionNameRequired = errors.New("definition name is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrInvalidInitialState indicates that the machine does not start in Idle.
	ErrInvalidInitialState = errors.New("initial state must be Idle")
	// ErrUnknownState indicates a state that is not part of the lifecycle.
	ErrUnknownState = errors.New("unknown state")
	// ErrMissingState indicates that a lifecycle state was not declared.
	ErrMissingState = errors.New("state is not declared")
	// ErrUnknownEventName indicates an event other than FETCH under "on".
	ErrUnknownEventName = errors.New("unknown event name")
	// ErrTargetNotFound indicates a transition to an undeclared state.
	ErrTargetNotFound = errors.New("transition target does not exist")
	// ErrUnexpectedTarget indicates a transition that leaves the lifecycle's shape.
	ErrUnexpectedTarget = errors.New("unexpected transition target")
	// ErrFetchRequired indicates a settled or idle state that ignores FETCH.
	ErrFetchRequired = errors.New("state must accept FETCH")
	// ErrInvokeRequired indicates that Loading does not invoke anything.
	ErrInvokeRequired = errors.New("loading state must invoke an operation")
	// ErrInvokeNotAllowed indicates an invoke outside of Loading.
	ErrInvokeNotAllowed = errors.New("only the loading state may invoke")
	// ErrFetchWhileLoading indicates a FETCH transition out of Loading.
	ErrFetchWhileLoading = errors.New("FETCH must be ignored while loading")
	// ErrUnreachableState indicates a state that cannot be reached from the initial state.
	ErrUnreachableState = errors.New("state is unreachable")
)

// StateError wraps an error with state context.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state State, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{State: state, Err: err}
}

// OperationError is how a rejected invocation is carried back into the
// machine. It never escapes to callers of Send; it ends up as the Failure
// snapshot's Error description.
type OperationError struct {
	Invocation uint64
	Err        error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("invocation %d: %v", e.Invocation, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// describe returns the user-facing description of a failed invocation.
func describe(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.Err != nil {
		err = opErr.Err
	}

	if err == nil || err.Error() == "" {
		return "unknown error"
	}

	return err.Error()
}
