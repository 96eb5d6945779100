package fetchmachine

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeebo/xxh3"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

var (
	// eventsTotal counts processed events, handled or ignored.
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "fetchsim_events_total",
		Help: "Total number of events processed by machine, event, current state and whether a transition fired",
	}, []string{"machine", "event", "state", "handled"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "fetchsim_transitions_total",
		Help: "Total number of state transitions by machine, from and to state",
	}, []string{"machine", "from", "to"})

	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "fetchsim_invocations_total",
		Help: "Total number of settled invocations by machine and outcome (success or error)",
	}, []string{"machine", "outcome"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "fetchsim_invocation_duration_seconds",
		Help:    "Duration of invocations by outcome",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"outcome"})

	machinesAlive = promauto.NewGauge(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "fetchsim_machines_alive",
		Help: "Number of running machines",
	})

	// staleSettlementsTotal counts settlements discarded because they did not
	// belong to the current invocation.
	staleSettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "fetchsim_stale_settlements_total",
		Help: "Total number of discarded settlements by machine",
	}, []string{"machine"})
)

// hashID shortens a machine id to a fixed-width label value.
func hashID(id string) string {
	if id == "" {
		return "unknown"
	}

	return strconv.FormatUint(xxh3.HashString(id)&0xffffffff, 16) //nolint:mnd
}
