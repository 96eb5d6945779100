package inspect

import (
	"context"
	"slices"
	"sync"

	"github.com/amp-labs/fetchsim/fetchmachine"
)

// Recorder keeps the most recent inspections in memory.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	records []fetchmachine.Inspection
}

// NewRecorder keeps at most limit inspections; zero or less keeps all.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Inspect(_ context.Context, in fetchmachine.Inspection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, in)

	if r.limit > 0 && len(r.records) > r.limit {
		r.records = slices.Clone(r.records[len(r.records)-r.limit:])
	}
}

// Records returns a copy of what was recorded, oldest first.
func (r *Recorder) Records() []fetchmachine.Inspection {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.records)
}

// Kinds returns the kind of every record, oldest first.
func (r *Recorder) Kinds() []fetchmachine.InspectionKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]fetchmachine.InspectionKind, len(r.records))
	for i, in := range r.records {
		kinds[i] = in.Kind
	}

	return kinds
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.records)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
}
