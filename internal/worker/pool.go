package worker

import (
	"context"
	"sync"
)

// Task is a unit of work producing a result of type R
type Task[R any] func(ctx context.Context) R

type indexedTask[R any] struct {
	index int
	run   Task[R]
}

// Pool runs tasks on a fixed number of workers and returns their results in
// submission order. Submit must be called from a single goroutine.
type Pool[R any] struct {
	workers    int
	tasks      chan indexedTask[R]
	results    []R
	done       []bool
	mu         sync.Mutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the given number of workers. Cancelling parent
// stops the pool like Shutdown.
func NewPool[R any](parent context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool[R]{
		workers:    workers,
		tasks:      make(chan indexedTask[R], workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			result := t.run(p.ctx)

			p.mu.Lock()
			p.results[t.index] = result
			p.done[t.index] = true
			p.mu.Unlock()
		}
	}
}

// Submit queues a task. It returns false if the pool has been shut down.
func (p *Pool[R]) Submit(task Task[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}

	p.mu.Lock()
	index := len(p.results)
	var zero R
	p.results = append(p.results, zero)
	p.done = append(p.done, false)
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		p.mu.Lock()
		p.results = p.results[:index]
		p.done = p.done[:index]
		p.mu.Unlock()
		return false
	case p.tasks <- indexedTask[R]{index: index, run: task}:
		return true
	}
}

// Wait waits for all submitted tasks and returns their results in submission
// order. Results of tasks that never ran after a shutdown are omitted.
func (p *Pool[R]) Wait() []R {
	p.closeOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]R, 0, len(p.results))
	for i, r := range p.results {
		if p.done[i] {
			results = append(results, r)
		}
	}
	return results
}

// Shutdown stops the pool immediately. Running tasks see a cancelled context.
func (p *Pool[R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
}
