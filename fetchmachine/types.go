// Package fetchmachine drives a single simulated asynchronous call through a
// fixed four-state lifecycle: Idle, Loading, Success and Failure.
//
// FETCH starts a call from any state but Loading. Entering Loading invokes
// the configured Operation exactly once; its settlement moves the machine to
// Success or Failure. There is no terminal state.
package fetchmachine

import "context"

// State is one of the four lifecycle states.
type State string

const (
	Idle    State = "Idle"
	Loading State = "Loading"
	Success State = "Success"
	Failure State = "Failure"
)

// States lists every state in declaration order.
var States = []State{Idle, Loading, Success, Failure} //nolint:gochecknoglobals

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	switch s {
	case Idle, Loading, Success, Failure:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}

// EventType names an event the machine can process.
type EventType string

const (
	// EventFetch is the only event accepted from outside the machine.
	EventFetch EventType = "FETCH"
	// EventDone is emitted internally when an invocation resolves.
	EventDone EventType = "done.invoke"
	// EventError is emitted internally when an invocation rejects.
	EventError EventType = "error.invoke"
)

// Internal reports whether e is a settlement event only the machine may raise.
func (e EventType) Internal() bool {
	return e == EventDone || e == EventError
}

func (e EventType) String() string {
	return string(e)
}

// Payload is what a successful invocation resolves with.
type Payload struct {
	Success bool  `json:"success"`
	Data    int64 `json:"data"`
}

// Operation is the asynchronous call invoked on every entry into Loading.
// It must honor ctx, which is cancelled when the machine stops.
type Operation func(ctx context.Context) (Payload, error)

// Transition is the lifecycle's transition table. It reports the state that
// follows from on ev, or (from, false) when no transition is defined.
func Transition(from State, ev EventType) (State, bool) {
	switch {
	case ev == EventFetch && (from == Idle || from == Success || from == Failure):
		return Loading, true
	case from == Loading && ev == EventDone:
		return Success, true
	case from == Loading && ev == EventError:
		return Failure, true
	default:
		return from, false
	}
}
