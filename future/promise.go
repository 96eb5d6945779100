package future

import (
	"runtime/debug"

	amperrors "github.com/amp-labs/fetchsim/errors"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/try"
)

// Promise is the write side of a Future. Only the first call to Success,
// Failure or Complete has any effect; it is safe to call from any goroutine.
type Promise[T any] struct {
	future *Future[T]
}

// Future returns the Future this Promise settles.
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}

func (p *Promise[T]) Success(value T) {
	p.fulfill(try.Succeeded(value))
}

func (p *Promise[T]) Failure(err error) {
	p.fulfill(try.Failed[T](err))
}

// Complete settles the Promise from a (value, error) pair.
func (p *Promise[T]) Complete(value T, err error) {
	p.fulfill(try.Of(value, err))
}

func (p *Promise[T]) fulfill(result try.Try[T]) {
	fut := p.future

	fut.once.Do(func() {
		fut.result = result

		// Closing under the lock keeps OnResult from registering a callback
		// between the close and the hand-off below.
		fut.mu.Lock()
		fut.settled.Store(true)
		close(fut.resultReady)

		callbacks := fut.callbacks
		fut.callbacks = nil
		fut.mu.Unlock()

		for _, callback := range callbacks {
			invokeCallback("OnResult", callback, result)
		}
	})
}

// invokeCallback runs callback on its own goroutine and logs a panic instead
// of letting it take the process down.
func invokeCallback[T any](kind string, callback func(T), value T) {
	go func() {
		defer func() {
			if err := amperrors.Recovered(recover(), debug.Stack()); err != nil {
				logger.Get().Error("panic encountered in future."+kind+" callback",
					"error", err, "stack", string(debug.Stack()))
			}
		}()

		callback(value)
	}()
}
