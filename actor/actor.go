// Package actor provides a mailbox actor: one goroutine that processes
// requests strictly one at a time. State owned by the processor needs no
// locking because nothing else ever touches it.
package actor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/try"
	"go.uber.org/atomic"
)

var (
	// ErrDeadActor is returned when interacting with a stopped actor.
	ErrDeadActor = errors.New("actor is dead")
	// ErrActorPanic wraps a panic raised by a processor.
	ErrActorPanic = errors.New("panic in actor")
)

// Processor handles a single request. It is only ever called from the
// actor's own goroutine.
type Processor[Request, Response any] func(ctx context.Context, req Request) (Response, error)

// Actor is a processor waiting to be started with Run.
type Actor[Request, Response any] struct {
	process Processor[Request, Response]
}

// New creates an actor around process.
func New[Request, Response any](process Processor[Request, Response]) *Actor[Request, Response] {
	return &Actor[Request, Response]{process: process}
}

type message[Request, Response any] struct {
	ctx     context.Context //nolint:containedctx
	request Request
	reply   chan try.Try[Response]
}

// Ref is a handle to a running actor.
type Ref[Request, Response any] struct {
	name      string
	subsystem string
	inbox     chan message[Request, Response]
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	dead      *atomic.Bool
}

// Run starts the actor. depth is the mailbox buffer size (0 for unbuffered).
// The actor stops when ctx is done or Stop is called.
func (a *Actor[Request, Response]) Run(ctx context.Context, name string, depth int) *Ref[Request, Response] {
	ref := &Ref[Request, Response]{
		name:      name,
		subsystem: logger.GetSubsystem(ctx),
		inbox:     make(chan message[Request, Response], max(depth, 0)),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		dead:      atomic.NewBool(false),
	}

	aliveActors.WithLabelValues(ref.subsystem, name).Inc()

	go func() {
		defer close(ref.done)
		defer aliveActors.WithLabelValues(ref.subsystem, name).Dec()
		defer ref.dead.Store(true)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ref.stop:
				return
			case msg := <-ref.inbox:
				enqueuedMessages.WithLabelValues(ref.subsystem, name).Dec()

				start := time.Now()

				a.handle(ctx, ref, msg)

				processedMessages.WithLabelValues(ref.subsystem, name).Inc()
				processingTime.WithLabelValues(ref.subsystem, name).Observe(time.Since(start).Seconds())
			}
		}
	}()

	return ref
}

func (a *Actor[Request, Response]) handle(ctx context.Context, ref *Ref[Request, Response], msg message[Request, Response]) {
	var result try.Try[Response]

	defer func() {
		if r := recover(); r != nil {
			actorPanic.WithLabelValues(ref.subsystem, ref.name).Inc()

			logger.Get(ctx).Error("actor recovered from panic",
				"actor", ref.name,
				"error", r,
				"stack", string(debug.Stack()))

			result = try.Failed[Response](panicError(ref.name, r))
		}

		if msg.reply != nil {
			msg.reply <- result
		}
	}()

	reqCtx := msg.ctx
	if reqCtx == nil {
		reqCtx = ctx
	}

	result = try.Of(a.process(reqCtx, msg.request))
}

func panicError(name string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w %s: %w", ErrActorPanic, name, err)
	}

	return fmt.Errorf("%w %s: %v", ErrActorPanic, name, r)
}

// Alive reports whether the actor is still processing messages.
func (r *Ref[Request, Response]) Alive() bool {
	return !r.dead.Load()
}

// Stop asks the actor to exit. Messages still queued are dropped and their
// requesters receive ErrDeadActor. Safe to call more than once.
func (r *Ref[Request, Response]) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

// Done is closed once the actor goroutine has exited.
func (r *Ref[Request, Response]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the actor goroutine has exited.
func (r *Ref[Request, Response]) Wait() {
	<-r.done
}

func (r *Ref[Request, Response]) submit(ctx context.Context, msg message[Request, Response]) error {
	if r.dead.Load() {
		return ErrDeadActor
	}

	submitCount.WithLabelValues(r.subsystem, r.name).Inc()

	start := time.Now()
	defer func() {
		submitTime.WithLabelValues(r.subsystem, r.name).Observe(time.Since(start).Seconds())
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrDeadActor
	case <-r.stop:
		return ErrDeadActor
	case r.inbox <- msg:
		enqueuedMessages.WithLabelValues(r.subsystem, r.name).Inc()

		return nil
	}
}

// Send enqueues a request without waiting for it to be processed.
// The processor runs it with the actor's own context.
func (r *Ref[Request, Response]) Send(ctx context.Context, request Request) error {
	return r.submit(ctx, message[Request, Response]{request: request})
}

// Request enqueues a request and waits for the processor's response.
// The processor receives ctx.
func (r *Ref[Request, Response]) Request(ctx context.Context, request Request) (Response, error) { //nolint:ireturn
	var zero Response

	reply := make(chan try.Try[Response], 1)

	err := r.submit(ctx, message[Request, Response]{ctx: ctx, request: request, reply: reply})
	if err != nil {
		return zero, err
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-r.done:
		// The actor may have answered just before exiting.
		select {
		case val := <-reply:
			return val.Get()
		default:
			return zero, ErrDeadActor
		}
	case val := <-reply:
		return val.Get()
	}
}
