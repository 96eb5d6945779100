package inspect

import (
	"context"
	"sync"

	"github.com/amp-labs/fetchsim/fetchmachine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultHubBuffer = 32

// droppedInspections counts inspections a slow subscriber missed.
var droppedInspections = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "fetchsim_inspections_dropped_total",
	Help: "Total number of inspections dropped because a subscriber was not keeping up",
})

// Hub fans inspections out to any number of subscribers. Inspect never
// blocks: a subscriber whose buffer is full misses the inspection.
type Hub struct {
	mu     sync.Mutex
	buffer int
	nextID uint64
	subs   map[uint64]chan fetchmachine.Inspection
}

// NewHub creates a hub whose subscribers buffer up to buffer inspections.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultHubBuffer
	}

	return &Hub{
		buffer: buffer,
		subs:   make(map[uint64]chan fetchmachine.Inspection),
	}
}

func (h *Hub) Inspect(_ context.Context, in fetchmachine.Inspection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- in:
		default:
			droppedInspections.Inc()
		}
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan fetchmachine.Inspection, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan fetchmachine.Inspection, h.buffer)
	h.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.subs, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}
