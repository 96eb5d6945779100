package fetchmachine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/amp-labs/fetchsim/actor"
	"github.com/amp-labs/fetchsim/future"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/try"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Machine hosts one lifecycle. All events, external and internal, are
// processed by a single actor goroutine, which is the only writer of the
// current snapshot. Readers see immutable copies.
type Machine struct {
	id        string
	def       *Definition
	operation Operation
	inspector Inspector
	log       *slog.Logger
	executor  future.Executor

	// ctx is the actor's context. Invocations run under it, so stopping
	// the machine cancels any call in flight.
	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc
	ref    *actor.Ref[message, Snapshot]

	current  *atomic.Pointer[Snapshot]
	stopped  *atomic.Bool
	inflight sync.WaitGroup
	done     chan struct{}

	changedMu sync.Mutex
	changed   chan struct{}
	closed    bool
}

// message is what travels through the mailbox: FETCH from callers or a
// settlement from the invocation.
type message struct {
	event      EventType
	invocation uint64
	payload    Payload
	err        error
}

// New builds a machine in its initial state and starts it. The machine
// stops when ctx is done or Stop is called.
func New(ctx context.Context, opts ...Option) (*Machine, error) {
	o := &options{
		inspector: NopInspector,
		depth:     defaultMailboxDepth,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.operation == nil {
		return nil, ErrOperationRequired
	}

	if o.definition == nil {
		o.definition = DefaultDefinition()
	} else if err := o.definition.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	if o.id == "" {
		o.id = uuid.NewString()
	}

	if o.logger == nil {
		o.logger = logger.Get(ctx)
	}

	actorCtx, cancel := context.WithCancel(ctx)

	m := &Machine{
		id:        o.id,
		def:       o.definition,
		operation: o.operation,
		inspector: o.inspector,
		log:       o.logger.With("machine_id", o.id),
		executor:  o.executor,
		ctx:       actorCtx,
		cancel:    cancel,
		stopped:   atomic.NewBool(false),
		done:      make(chan struct{}),
		changed:   make(chan struct{}),
	}

	initial := Snapshot{
		MachineID: m.id,
		State:     m.def.Initial,
		UpdatedAt: time.Now(),
	}
	m.current = atomic.NewPointer(&initial)

	machinesAlive.Inc()

	m.inspect(Inspection{Kind: KindActor, Status: ActorStarted, Snapshot: ptr(initial.clone())})
	m.inspect(Inspection{Kind: KindSnapshot, Snapshot: ptr(initial.clone())})

	m.ref = actor.New(m.process).Run(actorCtx, "fetchmachine", o.depth)

	go m.awaitExit()

	m.log.Debug("machine started", "state", initial.State)

	return m, nil
}

func (m *Machine) awaitExit() {
	m.ref.Wait()
	m.cancel()
	m.inflight.Wait()

	m.stopped.Store(true)

	m.changedMu.Lock()
	if !m.closed {
		m.closed = true
		close(m.changed)
	}
	m.changedMu.Unlock()

	machinesAlive.Dec()

	snap := m.Snapshot()
	m.inspect(Inspection{Kind: KindActor, Status: ActorStopped, Snapshot: &snap})
	m.log.Debug("machine stopped", "state", snap.State)

	close(m.done)
}

// ID returns the machine id.
func (m *Machine) ID() string {
	return m.id
}

// Definition returns the definition the machine runs.
func (m *Machine) Definition() *Definition {
	return m.def
}

// Send delivers an external event and returns the snapshot after it was
// processed. Only FETCH may be sent; settlement events are internal.
// FETCH while Loading is accepted and leaves the machine unchanged.
func (m *Machine) Send(ctx context.Context, ev EventType) (Snapshot, error) {
	if ev != EventFetch {
		return m.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownEvent, ev)
	}

	if m.stopped.Load() || !m.ref.Alive() {
		return m.Snapshot(), ErrMachineStopped
	}

	snap, err := m.ref.Request(ctx, message{event: ev})
	if err != nil {
		if errors.Is(err, actor.ErrDeadActor) {
			return m.Snapshot(), ErrMachineStopped
		}

		return m.Snapshot(), err
	}

	return snap, nil
}

// Snapshot returns a copy of the current snapshot.
func (m *Machine) Snapshot() Snapshot {
	return m.current.Load().clone()
}

// Changed returns a channel that is closed when the next snapshot is
// published, or when the machine stops. Call it again for later changes.
func (m *Machine) Changed() <-chan struct{} {
	m.changedMu.Lock()
	defer m.changedMu.Unlock()

	return m.changed
}

// Await blocks until the current snapshot satisfies pred, ctx is done or
// the machine stops.
func (m *Machine) Await(ctx context.Context, pred func(Snapshot) bool) (Snapshot, error) {
	for {
		changed := m.Changed()
		snap := m.Snapshot()

		if pred(snap) {
			return snap, nil
		}

		if m.stopped.Load() {
			return snap, ErrMachineStopped
		}

		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-changed:
		}
	}
}

// Stop stops the machine and cancels an invocation in flight. It does not
// wait; use Wait for that.
func (m *Machine) Stop() {
	m.cancel()
	m.ref.Stop()
}

// Wait blocks until the machine has stopped and the last invocation has
// returned.
func (m *Machine) Wait() {
	<-m.done
}

// Stopped reports whether the machine has stopped processing events. The
// Changed channel stays closed from then on.
func (m *Machine) Stopped() bool {
	return m.stopped.Load()
}

// Done is closed once the machine has stopped.
func (m *Machine) Done() <-chan struct{} {
	return m.done
}

// process runs on the actor goroutine only.
func (m *Machine) process(_ context.Context, msg message) (Snapshot, error) {
	cur := *m.current.Load()

	if msg.event.Internal() && (cur.State != Loading || msg.invocation != cur.Invocation) {
		staleSettlementsTotal.WithLabelValues(hashID(m.id)).Inc()
		eventsTotal.WithLabelValues(hashID(m.id), msg.event.String(), cur.State.String(), "false").Inc()

		m.log.Debug("discarding stale settlement",
			"event", msg.event,
			"invocation", msg.invocation,
			"current_invocation", cur.Invocation)

		m.inspect(Inspection{
			Kind:       KindEvent,
			Event:      msg.event,
			From:       cur.State,
			To:         cur.State,
			Invocation: msg.invocation,
		})

		return cur.clone(), nil
	}

	next, ok := m.def.Next(cur.State, msg.event)

	eventsTotal.WithLabelValues(hashID(m.id), msg.event.String(), cur.State.String(), strconv.FormatBool(ok)).Inc()

	if !ok {
		m.log.Debug("event ignored", "event", msg.event, "state", cur.State)

		m.inspect(Inspection{Kind: KindEvent, Event: msg.event, From: cur.State, To: cur.State})

		return cur.clone(), nil
	}

	snap := cur.clone()
	snap.State = next
	snap.Event = msg.event
	snap.Sequence++
	snap.UpdatedAt = time.Now()

	inspection := Inspection{
		Kind:       KindEvent,
		Event:      msg.event,
		From:       cur.State,
		To:         next,
		Handled:    true,
		Invocation: msg.invocation,
	}

	switch msg.event {
	case EventDone:
		value := msg.payload.Data
		snap.Result = &value
		snap.Error = ""

		m.log.Info("data", "data", value, "invocation", msg.invocation)
	case EventError:
		snap.Result = nil
		snap.Error = describe(msg.err)
		inspection.Error = snap.Error

		m.log.Error("error", "error", msg.err, "invocation", msg.invocation)
	case EventFetch:
	}

	if next == Loading {
		snap.Invocation++
		inspection.Invocation = snap.Invocation
	}

	transitionsTotal.WithLabelValues(hashID(m.id), cur.State.String(), next.String()).Inc()

	m.publish(snap)

	m.inspect(inspection)
	m.inspect(Inspection{Kind: KindSnapshot, Snapshot: ptr(snap.clone())})

	if next == Loading {
		m.invoke(snap.Invocation)
	}

	return snap.clone(), nil
}

func (m *Machine) publish(snap Snapshot) {
	m.current.Store(&snap)

	m.changedMu.Lock()
	defer m.changedMu.Unlock()

	if m.closed {
		return
	}

	close(m.changed)
	m.changed = make(chan struct{})
}

// invoke starts the operation for invocation id. Its settlement comes back
// through the mailbox like any other event.
func (m *Machine) invoke(id uint64) {
	ctx, span := startInvokeSpan(m.ctx, m.id, id)
	src, _ := m.def.Invokes(Loading)
	start := time.Now()

	m.log.Debug("invoking operation", "invocation", id)

	m.inflight.Add(1)

	fut := future.GoOn(ctx, m.executor, func(ctx context.Context) (Payload, error) {
		return m.operation(ctx)
	})

	fut.OnResult(func(result try.Try[Payload]) {
		defer m.inflight.Done()

		endInvokeSpan(span, result.Error)

		msg := try.Fold(result,
			func(payload Payload) message {
				return message{event: EventDone, invocation: id, payload: payload}
			},
			func(err error) message {
				return message{
					event:      EventError,
					invocation: id,
					err: logger.AnnotateError(&OperationError{Invocation: id, Err: err},
						"operation", src,
						"elapsed", time.Since(start)),
				}
			})

		outcome := outcomeSuccess
		if result.IsFailure() {
			outcome = outcomeError
		}

		invocationsTotal.WithLabelValues(hashID(m.id), outcome).Inc()
		invocationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

		if err := m.ref.Send(m.ctx, msg); err != nil {
			m.log.Debug("settlement dropped", "invocation", id, "error", err)
		}
	})
}

func (m *Machine) inspect(inspection Inspection) {
	inspection.MachineID = m.id
	inspection.At = time.Now()

	m.inspector.Inspect(m.ctx, inspection)
}

func ptr[T any](v T) *T {
	return &v
}
