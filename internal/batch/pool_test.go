package batch

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestExecutionStats(t *testing.T) {
	stats := NewExecutionStats()

	// Test initial state
	if stats.TasksSubmitted != 0 {
		t.Errorf("Expected 0 tasks submitted initially, got %d", stats.TasksSubmitted)
	}

	// Test recording task submission
	stats.RecordTaskSubmitted()
	if stats.TasksSubmitted != 1 {
		t.Errorf("Expected 1 task submitted, got %d", stats.TasksSubmitted)
	}

	// Test recording task completion
	duration := 50 * time.Millisecond
	stats.RecordTaskCompleted(duration)
	if stats.TasksCompleted != 1 {
		t.Errorf("Expected 1 task completed, got %d", stats.TasksCompleted)
	}

	// Test recording task failure
	err := context.DeadlineExceeded
	stats.RecordTaskFailed(err)
	if stats.TasksFailed != 1 {
		t.Errorf("Expected 1 task failed, got %d", stats.TasksFailed)
	}
	if stats.LastError != err {
		t.Errorf("Expected last error to be %v, got %v", err, stats.LastError)
	}

	stats.RecordWorkerCount(5)
	if stats.PeakWorkerCount != 5 {
		t.Errorf("Expected peak worker count 5, got %d", stats.PeakWorkerCount)
	}

	stats.RecordQueueDepth(10)
	if stats.PeakQueueDepth != 10 {
		t.Errorf("Expected peak queue depth 10, got %d", stats.PeakQueueDepth)
	}

	stats.Finalize()
	if stats.TotalExecutionTime <= 0 {
		t.Errorf("Expected positive total execution time, got %v", stats.TotalExecutionTime)
	}
}

func TestWorkerPool_RunsEverySubmittedTask(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()

	const n = 50
	var mu sync.Mutex
	ran := make(map[int]bool)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			mu.Lock()
			ran[i] = true
			mu.Unlock()
		}
		if err := pool.Submit(context.Background(), task); err != nil {
			t.Fatalf("Submit(%d): %v", i, err)
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != n {
		t.Errorf("ran %d of %d tasks", len(ran), n)
	}
}

func TestWorkerPool_RecoversPanickingTask(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.Submit(context.Background(), func() {
		defer wg.Done()
		panic("simulated solve failure")
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	wg.Wait()

	// A second task must still run: a panic in one task must not take down
	// the worker goroutine that ran it.
	done := make(chan struct{})
	if err := pool.Submit(context.Background(), func() { close(done) }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from a panicking task")
	}

	if pool.Stats().TasksFailed == 0 {
		t.Error("TasksFailed = 0, want at least 1 after the panic")
	}
}

func TestWorkerPool_SubmitAfterShutdownFails(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Shutdown()

	err := pool.Submit(context.Background(), func() {})
	if err != ErrPoolShutdown {
		t.Errorf("Submit after Shutdown: err = %v, want ErrPoolShutdown", err)
	}
}

func TestWorkerPool_SubmitRespectsContextCancellation(t *testing.T) {
	pool := NewDynamicWorkerPoolWithConfig(1, 1, DynamicConfig{})
	defer pool.Shutdown()

	// Fill the single worker and its queue (one running task plus
	// maxWorkers*4 = 4 queued) so further submits would block.
	block := make(chan struct{})
	for i := 0; i < 5; i++ {
		_ = pool.Submit(context.Background(), func() { <-block })
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	close(block)
	if err != context.DeadlineExceeded {
		t.Errorf("Submit with a full queue past context deadline: err = %v, want DeadlineExceeded", err)
	}
}

func TestWorkerPool_GetWorkerCountWithinBounds(t *testing.T) {
	pool := NewDynamicWorkerPool(4, 2)
	defer pool.Shutdown()

	count := pool.GetWorkerCount()
	if count < 2 || count > 4 {
		t.Errorf("GetWorkerCount() = %d, want in [2, 4]", count)
	}
}
