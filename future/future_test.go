package future

import (
	"context"
	"errors"
	"testing"
	"time"

	amperrors "github.com/amp-labs/fetchsim/errors"
	"github.com/amp-labs/fetchsim/try"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTest     = errors.New("test error")
	errPoolDown = errors.New("pool stopped")
)

func TestNew_Success(t *testing.T) {
	t.Parallel()

	fut, promise := New[int]()

	go func() {
		promise.Success(42)
	}()

	result, err := fut.Await()

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, fut.IsSettled())
}

func TestPromise_OnlyFirstCompletionCounts(t *testing.T) {
	t.Parallel()

	fut, promise := New[int]()

	promise.Failure(errTest)
	promise.Success(1)
	promise.Complete(2, nil)

	result, err := fut.Await()

	require.ErrorIs(t, err, errTest)
	assert.Equal(t, 0, result)
	assert.Same(t, fut, promise.Future())
}

func TestGoOn_Error(t *testing.T) {
	t.Parallel()

	fut := GoOn(t.Context(), nil, func(context.Context) (int, error) {
		return 0, errTest
	})

	_, err := fut.Await()

	require.ErrorIs(t, err, errTest)
}

func TestGoOn_Panic(t *testing.T) {
	t.Parallel()

	fut := GoOn(t.Context(), nil, func(context.Context) (int, error) {
		panic("test panic")
	})

	result, err := fut.Await()

	require.ErrorIs(t, err, amperrors.ErrPanicRecovery)
	assert.Equal(t, "recovered from panic: test panic", err.Error())
	assert.Equal(t, 0, result)
}

func TestGoOn_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	fut := GoOn(ctx, nil, func(ctx context.Context) (string, error) {
		<-ctx.Done()

		return "", ctx.Err()
	})

	cancel()

	_, err := fut.Await()

	require.ErrorIs(t, err, context.Canceled)
}

func TestOnResult(t *testing.T) {
	t.Parallel()

	t.Run("registered before settlement", func(t *testing.T) {
		t.Parallel()

		fut, promise := New[string]()
		got := make(chan try.Try[string], 1)

		fut.OnResult(func(result try.Try[string]) { got <- result })
		promise.Success("hello")

		select {
		case result := <-got:
			assert.Equal(t, "hello", result.Value)
		case <-time.After(time.Second):
			t.Fatal("callback was not invoked")
		}
	})

	t.Run("registered after settlement", func(t *testing.T) {
		t.Parallel()

		fut, promise := New[string]()
		promise.Failure(errTest)

		got := make(chan error, 1)
		fut.OnResult(func(result try.Try[string]) { got <- result.Error })

		select {
		case err := <-got:
			require.ErrorIs(t, err, errTest)
		case <-time.After(time.Second):
			t.Fatal("callback was not invoked")
		}
	})

	t.Run("panicking callback does not affect others", func(t *testing.T) {
		t.Parallel()

		fut, promise := New[int]()
		got := make(chan int, 1)

		fut.OnResult(func(try.Try[int]) { panic("callback panic") })
		fut.OnResult(func(result try.Try[int]) { got <- result.Value })
		promise.Success(7)

		select {
		case v := <-got:
			assert.Equal(t, 7, v)
		case <-time.After(time.Second):
			t.Fatal("callback was not invoked")
		}
	})
}

// queueExecutor accepts tasks without running them until told to.
type queueExecutor struct {
	tasks []func()
}

func (e *queueExecutor) Go(task func()) error {
	e.tasks = append(e.tasks, task)

	return nil
}

type inlineExecutor struct {
	err  error
	runs int
}

func (e *inlineExecutor) Go(task func()) error {
	if e.err != nil {
		return e.err
	}

	e.runs++
	task()

	return nil
}

func TestGoOn(t *testing.T) {
	t.Parallel()

	t.Run("runs on the executor", func(t *testing.T) {
		t.Parallel()

		exec := &inlineExecutor{}
		fut := GoOn(t.Context(), exec, func(context.Context) (int, error) { return 5, nil })

		assert.True(t, fut.IsSettled(), "inline executor settles before GoOn returns")
		assert.Equal(t, 1, exec.runs)

		v, err := fut.Await()
		require.NoError(t, err)
		assert.Equal(t, 5, v)
	})

	t.Run("scheduling failure settles the future", func(t *testing.T) {
		t.Parallel()

		fut := GoOn(t.Context(), &inlineExecutor{err: errPoolDown}, func(context.Context) (int, error) {
			t.Error("task must not run")

			return 0, nil
		})

		_, err := fut.Await()
		require.ErrorIs(t, err, ErrNotScheduled)
		require.ErrorIs(t, err, errPoolDown)
	})
	t.Run("dropped task settles when the context ends", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		exec := &queueExecutor{}

		fut := GoOn(ctx, exec, func(context.Context) (int, error) {
			t.Error("task must not run after its future settled")

			return 0, nil
		})

		assert.False(t, fut.IsSettled())

		cancel()

		_, err := fut.Await()
		require.ErrorIs(t, err, ErrNotScheduled)
		require.ErrorIs(t, err, context.Canceled)

		require.Len(t, exec.tasks, 1)
		exec.tasks[0]()
	})

	t.Run("queued task runs once started", func(t *testing.T) {
		t.Parallel()

		exec := &queueExecutor{}
		fut := GoOn(t.Context(), exec, func(context.Context) (int, error) { return 9, nil })

		require.Len(t, exec.tasks, 1)
		exec.tasks[0]()

		v, err := fut.Await()
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})
}
