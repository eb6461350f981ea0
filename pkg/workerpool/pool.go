// Package workerpool runs fire-and-forget work on a fixed set of goroutines.
// Submit never blocks: when every worker is busy and the backlog is full the
// task is refused with ErrPoolFull and the caller decides what to drop.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Task receives a context that outlives the request that submitted it but
// is cancelled by Shutdown.
type Task func(ctx context.Context)

type Pool struct {
	name  string
	tasks chan Task
	limit int64
	// inflight counts queued and running tasks. It never exceeds limit, the
	// capacity of tasks, so the send in Submit never blocks.
	inflight atomic.Int64
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts size workers. Up to backlog tasks wait while every worker is busy.
func New(name string, size, backlog int) *Pool {
	if size <= 0 {
		size = 1
	}
	if backlog < 0 {
		backlog = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:   name,
		tasks:  make(chan Task, size+backlog),
		limit:  int64(size + backlog),
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	if p.inflight.Add(1) > p.limit {
		p.inflight.Add(-1)
		return ErrPoolFull
	}
	p.tasks <- task
	return nil
}

// Shutdown refuses new tasks, drains the backlog and waits for the workers.
// Tasks still running when ctx ends see their context cancelled.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		p.cancel()
		<-done
	}
	p.cancel()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
		p.inflight.Add(-1)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", r)
		}
	}()
	task(p.ctx)
}
