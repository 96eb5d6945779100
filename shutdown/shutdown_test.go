package shutdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

//nolint:paralleltest // Tests share the package-level hook registry
func TestBeforeShutdown(t *testing.T) {
	hooks = nil

	var order []int

	BeforeShutdown(func() { order = append(order, 1) })
	BeforeShutdown(func() { order = append(order, 2) })

	cleanup()

	assert.Equal(t, []int{1, 2}, order)

	mut.Lock()
	assert.Nil(t, hooks)
	mut.Unlock()
}

//nolint:paralleltest // Tests share the package-level hook registry
func TestShutdownTriggersHooksThenCancel(t *testing.T) {
	hooks = nil

	ctx := SetupHandler(t.Context())

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	var hookCalled atomic.Bool

	BeforeShutdown(func() { hookCalled.Store(true) })

	Shutdown()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled after Shutdown")
	}

	assert.True(t, hookCalled.Load(), "hooks run before cancellation")
}

//nolint:paralleltest // Tests share the package-level hook registry
func TestParentCancellation(t *testing.T) {
	hooks = nil

	parent, cancel := context.WithCancel(t.Context())
	ctx := SetupHandler(parent)

	var hookCalled atomic.Bool

	BeforeShutdown(func() { hookCalled.Store(true) })

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled with its parent")
	}

	assert.Eventually(t, hookCalled.Load, time.Second, 5*time.Millisecond)
}
