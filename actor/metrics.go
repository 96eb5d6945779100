package actor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// All actor metrics carry "subsystem" and "actor" labels.

//nolint:gochecknoglobals
var latencyBuckets = []float64{
	0.001, // 1ms
	0.01,  // 10ms
	0.1,   // 100ms
	1,     // 1s
	5,     // 5s
	30,    // 30s
}

var (
	// actorPanic counts processor panics that were turned into errors.
	actorPanic = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "actor_panic",
		Help: "The total number of actors that recovered from a panic",
	}, []string{"subsystem", "actor"})

	// aliveActors tracks running actor goroutines.
	aliveActors = promauto.NewGaugeVec(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "actor_alive_actors",
		Help: "The total number of actors alive",
	}, []string{"subsystem", "actor"})

	// enqueuedMessages is the current mailbox depth.
	enqueuedMessages = promauto.NewGaugeVec(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "actor_enqueued_messages",
		Help: "The total number of messages enqueued",
	}, []string{"subsystem", "actor"})

	submitCount = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "actor_submit_count",
		Help: "The total number of messages submitted",
	}, []string{"subsystem", "actor"})

	// submitTime is how long senders wait for room in the mailbox.
	submitTime = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "actor_submit_time",
		Help:    "The time spent waiting for a message to be sent",
		Buckets: latencyBuckets,
	}, []string{"subsystem", "actor"})

	processedMessages = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "actor_processed_messages",
		Help: "The total number of messages processed",
	}, []string{"subsystem", "actor"})

	processingTime = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name:    "actor_processing_time",
		Help:    "The time spent processing a message",
		Buckets: latencyBuckets,
	}, []string{"subsystem", "actor"})
)
