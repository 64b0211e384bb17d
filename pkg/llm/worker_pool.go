package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPoolConfig configures the LLM worker pool.
type WorkerPoolConfig struct {
	MaxConcurrent int // Maximum concurrent LLM calls (default: 3)
}

// DefaultWorkerPoolConfig returns sensible defaults. The bound of 3 caps
// simultaneous agent-call load and cost; it is an empirical constant, not
// derived from table width.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		MaxConcurrent: 3,
	}
}

// WorkerPool manages concurrent LLM call execution with bounded
// parallelism. A counting semaphore limits outstanding requests; each
// pipeline stage owns its own pool, so bounds are never shared across
// stages.
type WorkerPool struct {
	config WorkerPoolConfig
	logger *zap.Logger
}

// NewWorkerPool creates a new LLM worker pool.
func NewWorkerPool(config WorkerPoolConfig, logger *zap.Logger) *WorkerPool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 3
	}
	return &WorkerPool{
		config: config,
		logger: logger.Named("llm-worker-pool"),
	}
}

// MaxConcurrent returns the pool's concurrency bound.
func (p *WorkerPool) MaxConcurrent() int {
	return p.config.MaxConcurrent
}

// WorkItem represents a unit of work to be processed.
type WorkItem[T any] struct {
	ID      string                               // For logging/tracking
	Execute func(ctx context.Context) (T, error) // The work to be executed
}

// WorkResult represents the result of a work item.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all work items with bounded parallelism. Completion
// order is unspecified, but the returned slice matches submission order:
// results[i] corresponds to items[i]. All items are processed even if
// some fail.
func Process[T any](
	ctx context.Context,
	pool *WorkerPool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]WorkResult[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)
	done := make(chan int, len(items))

	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, item WorkItem[T]) {
			defer wg.Done()

			// Acquire semaphore slot (blocks at max concurrency).
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = WorkResult[T]{ID: item.ID, Err: ctx.Err()}
				done <- idx
				return
			}

			result, err := item.Execute(ctx)
			results[idx] = WorkResult[T]{
				ID:     item.ID,
				Result: result,
				Err:    err,
			}
			done <- idx
		}(i, item)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for range done {
		completed++
		if onProgress != nil {
			onProgress(completed, len(items))
		}
	}

	return results
}
