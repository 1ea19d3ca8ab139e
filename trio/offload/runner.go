package offload

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	internal "github.com/Hanaasagi/trio/trio"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// Common error types for the offload runner
var (
	ErrRunnerClosed = errors.New("offload runner is closed")
)

// Job is the zero-argument deferred invocation handed to a worker.
type Job func() (interface{}, error)

// Future is the completion handle for a submitted job. The submitting
// goroutine suspends on Await until a worker reports a value or error.
type Future struct {
	id    uuid.UUID
	done  chan struct{}
	value interface{}
	err   error
}

// ID returns the unique id assigned to the job at submission.
func (f *Future) ID() uuid.UUID {
	return f.id
}

// Await blocks until the job completes or ctx is done. Cancellation
// abandons the wait; the in-flight job keeps running on its worker and
// its result is discarded.
func (f *Future) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Runner executes blocking jobs on a fixed set of worker goroutines so
// callers never run slow I/O on their own goroutine's critical path.
// Results are delivered per-future; completion order across concurrent
// submissions is not guaranteed.
type Runner struct {
	jobs    chan *submission
	workers *pool.Pool

	mu     sync.RWMutex
	closed bool
}

type submission struct {
	fn  Job
	fut *Future
}

// NewRunner creates a runner with workerCount workers consuming a queue of
// queueCapacity pending jobs. Non-positive arguments fall back to defaults.
func NewRunner(workerCount, queueCapacity int) *Runner {
	if workerCount <= 0 {
		workerCount = internal.DefaultWorkerCount()
	}
	if queueCapacity <= 0 {
		queueCapacity = internal.DefaultQueueCapacity
	}

	r := &Runner{
		jobs:    make(chan *submission, queueCapacity),
		workers: pool.New().WithMaxGoroutines(workerCount),
	}

	for i := 0; i < workerCount; i++ {
		r.workers.Go(r.work)
	}

	slog.Debug("Offload runner started",
		"workers", workerCount,
		"queue_capacity", queueCapacity)

	return r
}

// Submit hands fn to the worker set and returns its future. Submit fails
// with ErrRunnerClosed after Close, or with ctx.Err() if ctx is done
// before the job could be queued.
func (r *Runner) Submit(ctx context.Context, fn Job) (*Future, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrRunnerClosed
	}

	sub := &submission{
		fn: fn,
		fut: &Future{
			id:   uuid.New(),
			done: make(chan struct{}),
		},
	}

	select {
	case r.jobs <- sub:
		return sub.fut, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting jobs, waits for queued work to drain, and joins
// the workers. Close is idempotent.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	r.workers.Wait()
	slog.Debug("Offload runner closed")
}

// work is the worker loop: execute each queued job and publish its result
// on the future. Errors are carried through unchanged, never translated.
func (r *Runner) work() {
	for sub := range r.jobs {
		value, err := sub.fn()
		sub.fut.value = value
		sub.fut.err = err
		close(sub.fut.done)

		if err != nil {
			slog.Debug("Offload job failed", "id", sub.fut.id, "error", err)
		} else {
			slog.Debug("Offload job completed", "id", sub.fut.id)
		}
	}
}
