package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueFull is returned by MemoryDriver.Push when the buffer is full.
var ErrQueueFull = errors.New("queue: memory buffer full")

// MemoryDriver is an in-process, channel-backed queue driver.
// Not durable across restarts.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver creates an in-memory queue with a buffer of 1000 jobs.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1000)}
}

func (d *MemoryDriver) Push(_ context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}

// MemoryFailedStore keeps failed jobs in a slice.
type MemoryFailedStore struct {
	mu   sync.Mutex
	jobs []FailedJob
}

func (s *MemoryFailedStore) Record(_ context.Context, f FailedJob) error {
	s.mu.Lock()
	s.jobs = append(s.jobs, f)
	s.mu.Unlock()
	return nil
}

// Jobs returns a snapshot of the recorded failures.
func (s *MemoryFailedStore) Jobs() []FailedJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedJob, len(s.jobs))
	copy(out, s.jobs)
	return out
}
