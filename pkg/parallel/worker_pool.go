// Package parallel provides the bounded worker pool used to fan out
// independent analysis runs, such as per-snapshot trend computation.
package parallel

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
)

// WorkerPool manages a pool of worker goroutines.
type WorkerPool struct {
	workers      int
	taskQueue    chan func()
	wg           sync.WaitGroup
	once         sync.Once
	mu           sync.RWMutex         // protects taskQueue from concurrent close during send
	closed       bool                 // protected by mu
	panicHandler func(recovered any) // protected by mu
}

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// ErrPoolClosed is returned by SubmitCtx after Close.
var ErrPoolClosed = fmt.Errorf("worker pool is closed")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// NewWorkerPool creates a new worker pool with the given number of workers.
// A non-positive count means one worker.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		panicHandler: func(recovered any) {
			fmt.Fprintf(os.Stderr, "worker panic recovered: %v\n", recovered)
		},
	}
	pool.start()
	return pool, nil
}

// SetPanicHandler replaces the sink for values recovered from panicking
// tasks. The default writes them to standard error. A nil handler is
// ignored.
func (wp *WorkerPool) SetPanicHandler(fn func(recovered any)) {
	if fn == nil {
		return
	}
	wp.mu.Lock()
	wp.panicHandler = fn
	wp.mu.Unlock()
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue. A task panic is recovered and
// handed to the panic handler so one bad task cannot take the pool down
// without a trace.
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.runTask(task)
	}
}

func (wp *WorkerPool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.mu.RLock()
			handler := wp.panicHandler
			wp.mu.RUnlock()
			handler(r)
		}
	}()
	task()
}

// Submit adds a task to the pool. Returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// SubmitCtx adds a task to the pool, giving up when the context is done
// before the task can be queued.
func (wp *WorkerPool) SubmitCtx(ctx context.Context, task func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}
	select {
	case wp.taskQueue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the pool and waits for in-flight tasks to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait waits for all submitted tasks to complete. The pool cannot be reused
// afterwards.
func (wp *WorkerPool) Wait() {
	wp.Close()
}
