package fetchmachine

import (
	"context"
	"time"
)

// InspectionKind classifies an Inspection.
type InspectionKind string

const (
	// KindActor reports the machine starting or stopping.
	KindActor InspectionKind = "actor"
	// KindEvent reports an event the machine processed, handled or not.
	KindEvent InspectionKind = "event"
	// KindSnapshot reports a newly published snapshot.
	KindSnapshot InspectionKind = "snapshot"
)

// Actor statuses reported with KindActor.
const (
	ActorStarted = "started"
	ActorStopped = "stopped"
)

// Inspection is a diagnostic record emitted while the machine runs.
type Inspection struct {
	Kind      InspectionKind `json:"kind"`
	MachineID string         `json:"machineId"`
	At        time.Time      `json:"at"`

	// Status is set for KindActor.
	Status string `json:"status,omitempty"`

	// Set for KindEvent.
	Event      EventType `json:"event,omitempty"`
	From       State     `json:"from,omitempty"`
	To         State     `json:"to,omitempty"`
	Handled    bool      `json:"handled,omitempty"`
	Invocation uint64    `json:"invocation,omitempty"`
	Error      string    `json:"error,omitempty"`

	// Snapshot is set for KindSnapshot and KindActor.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Inspector observes a machine. Inspect is called from the machine's own
// goroutine and must not block for long or call back into the machine.
type Inspector interface {
	Inspect(ctx context.Context, inspection Inspection)
}

// InspectorFunc adapts a function to Inspector.
type InspectorFunc func(ctx context.Context, inspection Inspection)

func (f InspectorFunc) Inspect(ctx context.Context, inspection Inspection) {
	f(ctx, inspection)
}

type nopInspector struct{}

func (nopInspector) Inspect(context.Context, Inspection) {}

// NopInspector discards everything. It is the default.
var NopInspector Inspector = nopInspector{} //nolint:gochecknoglobals
