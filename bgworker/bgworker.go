// Package bgworker provides a bounded background worker pool with graceful
// lifecycle control. A *Pool satisfies future.Executor.
package bgworker

import (
	"context"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/fetchsim/logger"
	"github.com/amp-labs/fetchsim/shutdown"
)

// DefaultWorkerCount is used when New is given a non-positive size.
const DefaultWorkerCount = 4

// Pool runs tasks on at most a fixed number of goroutines.
type Pool struct {
	pool pond.Pool
}

// New creates a pool of the given size. The pool stops accepting work when
// ctx is done, and tasks still queued at that point are dropped without
// running. future.GoOn settles the futures of such tasks.
func New(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}

	logger.Get(ctx).Debug("Initializing background worker pool", "count", workers)

	return &Pool{pool: pond.NewPool(workers, pond.WithContext(ctx))}
}

// StopOnShutdown registers the pool with the shutdown package so queued
// tasks drain before the process context is cancelled.
func (p *Pool) StopOnShutdown(ctx context.Context) *Pool {
	shutdown.BeforeShutdown(func() {
		logger.Get(ctx).Debug("Stopping background worker pool")
		p.Stop()
		logger.Get(ctx).Debug("Background worker pool stopped")
	})

	return p
}

// Go submits a task and returns immediately. It fails once the pool is stopped.
func (p *Pool) Go(task func()) error {
	return p.pool.Go(task)
}

// Stop waits for running and queued tasks and rejects new ones.
func (p *Pool) Stop() {
	if p.pool.Stopped() {
		return
	}

	p.pool.StopAndWait()
}

// Stopped reports whether the pool has been stopped.
func (p *Pool) Stopped() bool {
	return p.pool.Stopped()
}

// Running returns the number of workers currently executing a task.
func (p *Pool) Running() int64 {
	return p.pool.RunningWorkers()
}

// Completed returns the number of tasks that finished, successfully or not.
func (p *Pool) Completed() uint64 {
	return p.pool.CompletedTasks()
}
