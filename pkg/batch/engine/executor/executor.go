// Package executor provides a bounded worker pool for chunk dispatch.
package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// ErrExecutorClosed is returned when submitting to a closed executor.
var ErrExecutorClosed = errors.New("executor is closed")

// Task is a unit of work run on a pool worker.
type Task func() error

// PoolExecutor runs tasks on a fixed set of workers fed by a bounded
// queue. Submit blocks while the queue is full so producers are
// backpressured instead of tasks being dropped.
type PoolExecutor struct {
	tasks  chan Task
	wg     sync.WaitGroup
	mu     sync.Mutex
	errs   *multierror.Error
	closed bool
}

// NewPoolExecutor starts workers goroutines over a queue of the given
// capacity. workers and queueCapacity below 1 are raised to 1.
func NewPoolExecutor(workers, queueCapacity int) *PoolExecutor {
	if workers < 1 {
		workers = 1
	}
	if queueCapacity < 1 {
		queueCapacity = 1
	}
	e := &PoolExecutor{tasks: make(chan Task, queueCapacity)}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.worker()
	}
	return e
}

func (e *PoolExecutor) worker() {
	defer e.wg.Done()
	for task := range e.tasks {
		if err := task(); err != nil {
			e.mu.Lock()
			e.errs = multierror.Append(e.errs, err)
			e.mu.Unlock()
		}
	}
}

// Submit enqueues a task, blocking while the queue is full. It returns
// ctx.Err() if the context ends first, or ErrExecutorClosed after Wait.
func (e *PoolExecutor) Submit(ctx context.Context, task Task) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrExecutorClosed
	}
	e.mu.Unlock()

	select {
	case e.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the errors collected so far without waiting.
func (e *PoolExecutor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errs.ErrorOrNil()
}

// Wait closes the queue, waits for in-flight tasks to finish, and
// returns the aggregate of all task errors.
func (e *PoolExecutor) Wait() error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.mu.Unlock()

	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errs.ErrorOrNil()
}
