// Package tasks runs best-effort side effects (quota recomputation,
// activity logging) off the request path. Submitters never wait for a task
// and never learn whether it failed.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/logging"
)

// Func is the body of a task. Its error is logged and dropped.
type Func func(ctx context.Context) error

// Dispatcher accepts fire-and-forget tasks.
type Dispatcher interface {
	Submit(ctx context.Context, name string, fn Func)
}

type task struct {
	name string
	ctx  context.Context
	fn   Func
}

// Queue is a bounded Dispatcher served by a fixed pool of workers.
type Queue struct {
	logger  logging.Logger
	timeout time.Duration
	workers int

	mu     sync.RWMutex
	closed bool
	ch     chan task
}

// NewQueue creates a queue holding up to size pending tasks. Each task runs
// with its own timeout, detached from the submitting request's cancellation.
func NewQueue(logger logging.Logger, workers, size int, timeout time.Duration) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &Queue{
		logger:  logger.With("module", "tasks"),
		timeout: timeout,
		workers: workers,
		ch:      make(chan task, size),
	}
}

// Submit enqueues fn without blocking. When the queue is full or already
// stopped the task is dropped with a warning.
func (q *Queue) Submit(ctx context.Context, name string, fn Func) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.logger.Warn(ctx, "task dropped, queue stopped", "task", name)
		return
	}

	select {
	case q.ch <- task{name: name, ctx: context.WithoutCancel(ctx), fn: fn}:
	default:
		q.logger.Warn(ctx, "task dropped, queue full", "task", name)
	}
}

// Run starts the workers and blocks until ctx is done. Pending tasks are
// drained before Run returns.
func (q *Queue) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range q.ch {
				q.execute(t)
			}
		}()
	}

	<-ctx.Done()

	q.mu.Lock()
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	wg.Wait()
	q.logger.Info(ctx, "task queue stopped")
	return nil
}

func (q *Queue) execute(t task) {
	ctx := t.ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			q.logger.Error(ctx, "task panicked", "task", t.name, "panic", p)
		}
	}()

	if err := t.fn(ctx); err != nil {
		q.logger.Error(ctx, "task failed", "task", t.name, "error", err)
	}
}

// Inline runs tasks synchronously in the caller's goroutine. Failures are
// still only logged.
type Inline struct {
	Logger logging.Logger
}

func (d Inline) Submit(ctx context.Context, name string, fn Func) {
	if err := fn(ctx); err != nil && d.Logger != nil {
		d.Logger.Error(ctx, "task failed", "task", name, "error", err)
	}
}
