// Package queue runs background jobs on a memory or Redis backed queue.
//
//	q := queue.New(queue.NewMemoryDriver(), queue.WithFailedStore(queue.NewGormFailedStore(db)))
//	q.Register(jobs.WelcomeEmailName, func() queue.Job { return &jobs.WelcomeEmail{} })
//	go q.Work(ctx, 2)
//	_ = q.Dispatch(ctx, &jobs.WelcomeEmail{UserID: id})
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// Job is the interface every queued job must satisfy. Jobs travel as JSON,
// so their exported fields are the payload.
type Job interface {
	// Name is the registry key used to rebuild the job on the worker side.
	Name() string
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle(ctx context.Context) error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	JobType  string
	Payload  []byte
	Err      error
	FailedAt time.Time
	Attempts int
}

// FailedStore keeps jobs that exhausted their retries.
type FailedStore interface {
	Record(ctx context.Context, f FailedJob) error
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is available. A nil payload with a nil
	// error means nothing arrived before the driver's poll timeout.
	Pop(ctx context.Context) ([]byte, error)
}

// ------------------- Manager -------------------

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   FailedStore
	maxRetry int
	backoff  time.Duration
}

type Option func(*Manager)

// WithMaxRetry sets how many times a failing job is attempted.
func WithMaxRetry(n int) Option { return func(m *Manager) { m.maxRetry = n } }

// WithBackoff sets the base delay between attempts; attempt n waits n×d.
func WithBackoff(d time.Duration) Option { return func(m *Manager) { m.backoff = d } }

func WithFailedStore(s FailedStore) Option { return func(m *Manager) { m.failed = s } }

func New(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register makes a job type available for deserialization by name.
// Call this once at boot for every job type.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// ------------------- Dispatch -------------------

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}

	env, err := json.Marshal(envelope{Type: job.Name(), Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	if err := m.driver.Push(ctx, env); err != nil {
		return fmt.Errorf("queue: push %s: %w", job.Name(), err)
	}
	return nil
}

// ------------------- Worker -------------------

// Work runs n concurrent workers until ctx is cancelled, then waits for the
// jobs in flight to finish.
func (m *Manager) Work(ctx context.Context, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	wg.Wait()
	logger.Info("queue: workers stopped")
}

func (m *Manager) work(ctx context.Context) {
	for {
		raw, err := m.driver.Pop(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("queue: pop failed", "error", err)
			if !sleep(ctx, 500*time.Millisecond) {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}

		// Jobs already taken off the queue run to completion on shutdown.
		m.process(context.WithoutCancel(ctx), raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		m.recordFailed(ctx, env, errors.New("unregistered job type"), 0)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		m.recordFailed(ctx, env, err, 0)
		return
	}

	m.runWithRetry(ctx, job, env)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, env envelope) {
	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		if err := job.Handle(ctx); err != nil {
			lastErr = err
			logger.Warn("queue: job failed, retrying",
				"type", env.Type, "attempt", attempt, "error", err)
			if attempt < m.maxRetry {
				sleep(ctx, time.Duration(attempt)*m.backoff)
			}
			continue
		}
		metrics.RecordQueueJob(env.Type, "success", start)
		logger.Debug("queue: job processed", "type", env.Type)
		return
	}

	metrics.RecordQueueJob(env.Type, "failed", start)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
	m.recordFailed(ctx, env, lastErr, m.maxRetry)
}

func (m *Manager) recordFailed(ctx context.Context, env envelope, err error, attempts int) {
	if m.failed == nil {
		return
	}
	f := FailedJob{
		JobType:  env.Type,
		Payload:  env.Payload,
		Err:      err,
		FailedAt: time.Now().UTC(),
		Attempts: attempts,
	}
	if rerr := m.failed.Record(ctx, f); rerr != nil {
		logger.Error("queue: failed to persist failed job", "type", env.Type, "error", rerr)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
