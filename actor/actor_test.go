package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type empty struct{}

func TestActorPanic(t *testing.T) {
	t.Parallel()

	act := New(func(context.Context, empty) (empty, error) {
		panic("test panic")
	})

	ref := act.Run(t.Context(), "test", 1)
	defer ref.Stop()

	_, err := ref.Request(t.Context(), empty{})

	require.Error(t, err)
	require.ErrorIs(t, err, ErrActorPanic)
	require.ErrorContains(t, err, "test panic")

	assert.True(t, ref.Alive(), "a panic does not kill the actor")
}

func TestActorRequestsAreSerialized(t *testing.T) {
	t.Parallel()

	// counter is only touched from the actor goroutine.
	counter := 0

	act := New(func(_ context.Context, delta int) (int, error) {
		counter += delta

		return counter, nil
	})

	ref := act.Run(t.Context(), "counter", 4)
	defer ref.Stop()

	done := make(chan struct{})

	for range 10 {
		go func() {
			defer func() { done <- struct{}{} }()

			_, err := ref.Request(t.Context(), 1)
			assert.NoError(t, err)
		}()
	}

	for range 10 {
		<-done
	}

	total, err := ref.Request(t.Context(), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestActorProcessorError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom") //nolint:err113

	act := New(func(context.Context, string) (string, error) {
		return "", errBoom
	})

	ref := act.Run(t.Context(), "failing", 0)
	defer ref.Stop()

	_, err := ref.Request(t.Context(), "x")
	require.ErrorIs(t, err, errBoom)
}

func TestActorSend(t *testing.T) {
	t.Parallel()

	seen := make(chan string, 1)

	act := New(func(_ context.Context, msg string) (empty, error) {
		seen <- msg

		return empty{}, nil
	})

	ref := act.Run(t.Context(), "sender", 1)
	defer ref.Stop()

	require.NoError(t, ref.Send(t.Context(), "hello"))

	select {
	case msg := <-seen:
		assert.Equal(t, "hello", msg)
	case <-time.After(time.Second):
		t.Fatal("message was not processed")
	}
}

func TestActorStop(t *testing.T) {
	t.Parallel()

	act := New(func(context.Context, empty) (empty, error) {
		return empty{}, nil
	})

	ref := act.Run(t.Context(), "stopper", 0)
	assert.True(t, ref.Alive())

	ref.Stop()
	ref.Stop()
	ref.Wait()

	assert.False(t, ref.Alive())

	_, err := ref.Request(t.Context(), empty{})
	require.ErrorIs(t, err, ErrDeadActor)
	require.ErrorIs(t, ref.Send(t.Context(), empty{}), ErrDeadActor)
}

func TestActorContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	act := New(func(context.Context, empty) (empty, error) {
		return empty{}, nil
	})

	ref := act.Run(ctx, "cancelled", 0)

	cancel()

	select {
	case <-ref.Done():
	case <-time.After(time.Second):
		t.Fatal("actor did not exit after context cancellation")
	}

	assert.False(t, ref.Alive())
}

func TestActorRequestContextTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	act := New(func(context.Context, empty) (empty, error) {
		<-release

		return empty{}, nil
	})

	ref := act.Run(t.Context(), "slow", 0)
	defer ref.Stop()
	defer close(release)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := ref.Request(ctx, empty{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
