package parallel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestWorkerPool_RunsAllTasks tests basic task execution
func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool, err := NewWorkerPool(4)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
		})
		if !ok {
			t.Fatal("Submit returned false on an open pool")
		}
	}
	wg.Wait()
	pool.Close()

	if counter != 50 {
		t.Errorf("Expected 50 tasks run, got %d", counter)
	}
}

// TestWorkerPool_SubmitAfterClose tests the closed-pool path
func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Expected Submit to return false after Close")
	}
	if err := pool.SubmitCtx(context.Background(), func() {}); err != ErrPoolClosed {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
}

// TestWorkerPool_SubmitCtxCancelled tests that a full queue plus a
// cancelled context gives up instead of blocking
func TestWorkerPool_SubmitCtxCancelled(t *testing.T) {
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}
	defer pool.Close()

	// occupy the single worker and fill the buffered queue
	block := make(chan struct{})
	pool.Submit(func() { <-block })
	pool.Submit(func() {})
	pool.Submit(func() {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = pool.SubmitCtx(ctx, func() {})
	close(block)
	if err == nil {
		t.Error("Expected SubmitCtx to fail once the context expired")
	}
}

// TestWorkerPool_PanicRecovery tests that a panicking task does not kill
// the pool
func TestWorkerPool_PanicRecovery(t *testing.T) {
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}

	var ran int64
	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(func() {
		defer wg.Done()
		panic("task gone wrong")
	})
	wg.Wait()

	wg.Add(1)
	pool.Submit(func() {
		defer wg.Done()
		atomic.AddInt64(&ran, 1)
	})
	wg.Wait()
	pool.Close()

	if ran != 1 {
		t.Error("Expected the pool to survive a panicking task")
	}
}

// TestWorkerPool_PanicHandler tests that the recovered value reaches the
// registered handler
func TestWorkerPool_PanicHandler(t *testing.T) {
	pool, err := NewWorkerPool(1)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}

	got := make(chan any, 1)
	pool.SetPanicHandler(func(recovered any) { got <- recovered })

	pool.Submit(func() { panic("task gone wrong") })
	pool.Close()

	select {
	case r := <-got:
		if r != "task gone wrong" {
			t.Errorf("Expected recovered value %q, got %v", "task gone wrong", r)
		}
	case <-time.After(time.Second):
		t.Error("Expected the handler to receive the panic value")
	}
}

// TestWorkerPool_MinimumOneWorker tests the non-positive count default
func TestWorkerPool_MinimumOneWorker(t *testing.T) {
	pool, err := NewWorkerPool(0)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}
	defer pool.Close()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected the defaulted pool to run tasks")
	}
}
