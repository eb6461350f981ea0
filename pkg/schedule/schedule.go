// Package schedule runs named tasks at fixed intervals inside the server
// process.
//
//	s := schedule.New()
//	s.Every(time.Hour, "sales:summary", logSummary)
//	go s.Run(ctx)
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

type Task func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	task     Task
	lastRun  time.Time
	running  bool
}

type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	now     func() time.Time
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{now: time.Now}
}

// Every registers task under name. A run that is still going when the task
// falls due again is skipped rather than overlapped.
func (s *Scheduler) Every(interval time.Duration, name string, task Task) {
	if interval <= 0 {
		panic(fmt.Sprintf("schedule: %s: interval must be positive", name))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{name: name, interval: interval, task: task})
}

// List returns "name every interval" for each task, sorted by name.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s every %s", e.name, e.interval))
	}
	sort.Strings(out)
	return out
}

// Run checks for due tasks every second until ctx ends, then waits for the
// runs in flight. Every task runs once at start.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("schedule: started", "tasks", len(s.List()))
	s.tick(ctx)

	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: stopped")
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.running || (!e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval) {
			continue
		}
		e.running = true
		e.lastRun = now
		s.wg.Add(1)
		go s.dispatch(ctx, e)
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: task panicked", "task", e.name, "panic", r)
		}
		s.mu.Lock()
		e.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	if err := e.task(ctx); err != nil {
		logger.Warn("schedule: task failed", "task", e.name, "error", err)
		return
	}
	logger.Debug("schedule: task done", "task", e.name, "duration", time.Since(start))
}
