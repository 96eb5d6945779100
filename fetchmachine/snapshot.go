package fetchmachine

import "time"

// Snapshot is an immutable view of the machine at one point in time.
type Snapshot struct {
	MachineID string `json:"machineId"`
	State     State  `json:"state"`

	// Result is the value of the last successful invocation. Set on entry
	// into Success, cleared on entry into Failure.
	Result *int64 `json:"result,omitempty"`
	// Error describes the last failed invocation. Set on entry into
	// Failure, cleared on entry into Success.
	Error string `json:"error,omitempty"`

	// Invocation counts entries into Loading; it identifies the current or
	// most recent invocation.
	Invocation uint64 `json:"invocation"`
	// Sequence increases by one with every published snapshot.
	Sequence  uint64    `json:"sequence"`
	Event     EventType `json:"event,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Matches reports whether the snapshot is in state.
func (s Snapshot) Matches(state State) bool {
	return s.State == state
}

// Value returns the last successful result, if any.
func (s Snapshot) Value() (int64, bool) {
	if s.Result == nil {
		return 0, false
	}

	return *s.Result, true
}

// clone returns a deep copy so callers can never alias the machine's Result.
func (s Snapshot) clone() Snapshot {
	if s.Result != nil {
		v := *s.Result
		s.Result = &v
	}

	return s
}

// Settled reports whether snap is in Success or Failure.
func Settled(snap Snapshot) bool {
	return snap.State == Success || snap.State == Failure
}
