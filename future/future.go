// Package future runs a computation asynchronously and hands its outcome to
// whoever is waiting for it, either by blocking (Await) or by callback (OnResult).
//
// A Future is the read side, a Promise the write side. A Future settles exactly
// once; later attempts to complete its Promise are ignored.
package future

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	amperrors "github.com/amp-labs/fetchsim/errors"
	"github.com/amp-labs/fetchsim/try"
	"go.uber.org/atomic"
)

// ErrNotScheduled is returned by a Future whose work could not be handed to
// its Executor (for example because the pool was stopped).
var ErrNotScheduled = errors.New("future: work could not be scheduled")

// Executor runs tasks somewhere other than the calling goroutine.
// A pond.Pool satisfies it.
type Executor interface {
	Go(task func()) error
}

// Future is the read-only side of an asynchronous computation.
type Future[T any] struct {
	once        sync.Once
	result      try.Try[T]
	resultReady chan struct{}
	settled     *atomic.Bool

	mu        sync.Mutex
	callbacks []func(try.Try[T])
}

// New creates an unsettled Future and the Promise that settles it.
func New[T any]() (*Future[T], *Promise[T]) {
	fut := &Future[T]{
		resultReady: make(chan struct{}),
		settled:     atomic.NewBool(false),
	}

	return fut, &Promise[T]{future: fut}
}

// GoOn runs f on exec, or on a new goroutine when exec is nil. A panic in f
// settles the Future with an error wrapping amperrors.ErrPanicRecovery.
//
// An executor may drop work it has queued but not started, as a pond pool
// does when its context ends. When ctx is done before exec starts the task,
// the Future settles with ErrNotScheduled and f never runs.
func GoOn[T any](ctx context.Context, exec Executor, f func(ctx context.Context) (T, error)) *Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	fut, promise := New[T]()

	if exec == nil {
		go run(ctx, promise, f)

		return fut
	}

	started := atomic.NewBool(false)

	task := func() {
		if started.CompareAndSwap(false, true) {
			run(ctx, promise, f)
		}
	}

	if err := exec.Go(task); err != nil {
		promise.Failure(fmt.Errorf("%w: %w", ErrNotScheduled, err))

		return fut
	}

	go func() {
		select {
		case <-fut.Done():
		case <-ctx.Done():
			if started.CompareAndSwap(false, true) {
				promise.Failure(fmt.Errorf("%w: %w", ErrNotScheduled, ctx.Err()))
			}
		}
	}()

	return fut
}

func run[T any](ctx context.Context, promise *Promise[T], f func(ctx context.Context) (T, error)) {
	defer func() {
		if err := amperrors.Recovered(recover(), debug.Stack()); err != nil {
			promise.Failure(err)
		}
	}()

	promise.Complete(f(ctx))
}

// Await blocks until the Future settles.
func (f *Future[T]) Await() (T, error) { //nolint:ireturn
	<-f.resultReady

	return f.result.Get()
}

// Done returns a channel that is closed once the Future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.resultReady
}

// IsSettled reports whether the Future already has a result.
func (f *Future[T]) IsSettled() bool {
	return f.settled.Load()
}

// OnResult registers a callback invoked with the outcome once the Future
// settles. Callbacks run on their own goroutine; a panicking callback is
// logged and otherwise ignored. Registering on a settled Future invokes the
// callback right away.
func (f *Future[T]) OnResult(callback func(try.Try[T])) {
	if callback == nil {
		return
	}

	f.mu.Lock()

	if !f.settled.Load() {
		f.callbacks = append(f.callbacks, callback)
		f.mu.Unlock()

		return
	}

	f.mu.Unlock()

	invokeCallback("OnResult", callback, f.result)
}
