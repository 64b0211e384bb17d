package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestProcess_PreservesSubmissionOrder(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 3}, zap.NewNop())

	var items []WorkItem[string]
	for i := 0; i < 10; i++ {
		i := i
		items = append(items, WorkItem[string]{
			ID: fmt.Sprintf("task%d", i),
			Execute: func(ctx context.Context) (string, error) {
				// Earlier items sleep longer so completion order inverts
				// submission order.
				time.Sleep(time.Duration(10-i) * time.Millisecond)
				return fmt.Sprintf("result%d", i), nil
			},
		})
	}

	results := Process(context.Background(), pool, items, nil)

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("item %d failed: %v", i, r.Err)
		}
		if want := fmt.Sprintf("result%d", i); r.Result != want {
			t.Errorf("results[%d] = %q, want %q", i, r.Result, want)
		}
	}
}

func TestProcess_SemaphoreBoundRespected(t *testing.T) {
	const bound = 3
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: bound}, zap.NewNop())

	var current, peak int64
	var items []WorkItem[int]
	for i := 0; i < 20; i++ {
		items = append(items, WorkItem[int]{
			ID: fmt.Sprintf("task%d", i),
			Execute: func(ctx context.Context) (int, error) {
				n := atomic.AddInt64(&current, 1)
				for {
					p := atomic.LoadInt64(&peak)
					if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt64(&current, -1)
				return int(n), nil
			},
		})
	}

	Process(context.Background(), pool, items, nil)

	if p := atomic.LoadInt64(&peak); p > bound {
		t.Errorf("observed %d concurrent executions, bound is %d", p, bound)
	}
}

func TestProcess_ContinuesPastFailures(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	expectedErr := errors.New("task failed")
	items := []WorkItem[string]{
		{ID: "a", Execute: func(ctx context.Context) (string, error) { return "ok-a", nil }},
		{ID: "b", Execute: func(ctx context.Context) (string, error) { return "", expectedErr }},
		{ID: "c", Execute: func(ctx context.Context) (string, error) { return "ok-c", nil }},
	}

	results := Process(context.Background(), pool, items, nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Result != "ok-a" {
		t.Errorf("unexpected result for a: %+v", results[0])
	}
	if !errors.Is(results[1].Err, expectedErr) {
		t.Errorf("expected b to fail with %v, got %v", expectedErr, results[1].Err)
	}
	if results[2].Err != nil || results[2].Result != "ok-c" {
		t.Errorf("unexpected result for c: %+v", results[2])
	}
}

func TestProcess_EmptyItems(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	if results := Process[int](context.Background(), pool, nil, nil); results != nil {
		t.Errorf("expected nil results for empty items, got %v", results)
	}
}

func TestProcess_ReportsProgress(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	items := []WorkItem[int]{
		{ID: "a", Execute: func(ctx context.Context) (int, error) { return 1, nil }},
		{ID: "b", Execute: func(ctx context.Context) (int, error) { return 2, nil }},
	}

	var calls []int
	Process(context.Background(), pool, items, func(completed, total int) {
		if total != 2 {
			t.Errorf("expected total=2, got %d", total)
		}
		calls = append(calls, completed)
	})

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("unexpected progress calls: %v", calls)
	}
}

func TestProcess_ContextCancellation(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	items := []WorkItem[int]{
		{ID: "a", Execute: func(ctx context.Context) (int, error) {
			cancel()
			time.Sleep(20 * time.Millisecond)
			return 1, nil
		}},
		{ID: "b", Execute: func(ctx context.Context) (int, error) {
			return 2, nil
		}},
	}

	results := Process(ctx, pool, items, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// The second item never acquires the semaphore slot before the
	// context is cancelled.
	if !errors.Is(results[1].Err, context.Canceled) {
		t.Errorf("expected second item to observe cancellation, got %v", results[1].Err)
	}
}
