package scheduler

import (
	"sync"
	"time"
)

// Scheduler owns a mapping from task key to a cancellable handle. Periodic
// tasks drive the per-room tick loops; one-shot tasks drive the grace-period
// transitions. Cancellation is synchronous and idempotent: after Cancel
// returns, no invocation of the task is running or will start. Tasks can be
// mocked for testing so tests drive ticks by hand.
type Scheduler interface {
	// Every runs fn at the given period under the given key until fn
	// returns false or the key is cancelled
	Every(key string, period time.Duration, fn func() bool)

	// After runs fn once after the delay unless the key is cancelled first
	After(key string, delay time.Duration, fn func())

	// Cancel stops the task registered under key, if any
	Cancel(key string)

	// Has reports whether a task is registered under key
	Has(key string) bool

	// Shutdown cancels every outstanding task
	Shutdown()
}

// TickerScheduler implements Scheduler with one goroutine per task
type TickerScheduler struct {
	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	stop chan struct{}
	done chan struct{}
}

// Ensure TickerScheduler implements Scheduler
var _ Scheduler = (*TickerScheduler)(nil)

// New creates an empty TickerScheduler
func New() *TickerScheduler {
	return &TickerScheduler{
		tasks: make(map[string]*task),
	}
}

// Every registers a periodic task. A key that is already registered is left
// untouched; callers guard against duplicate registration.
func (s *TickerScheduler) Every(key string, period time.Duration, fn func() bool) {
	s.mu.Lock()
	if _, ok := s.tasks[key]; ok {
		s.mu.Unlock()
		return
	}
	t := &task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.tasks[key] = t
	s.mu.Unlock()

	go func() {
		defer close(t.done)
		defer s.remove(key, t)

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if !fn() {
					return
				}
			}
		}
	}()
}

// After registers a one-shot task
func (s *TickerScheduler) After(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	if _, ok := s.tasks[key]; ok {
		s.mu.Unlock()
		return
	}
	t := &task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.tasks[key] = t
	s.mu.Unlock()

	go func() {
		defer close(t.done)
		defer s.remove(key, t)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-t.stop:
		case <-timer.C:
			fn()
		}
	}()
}

// Cancel stops and deregisters the task under key, waiting for any
// in-flight invocation to finish. Cancelling an absent key is a no-op.
// A task must never cancel its own key; it signals completion by
// returning false instead.
func (s *TickerScheduler) Cancel(key string) {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if ok {
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	if ok {
		close(t.stop)
		<-t.done
	}
}

// Has reports whether a task is registered under key
func (s *TickerScheduler) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Shutdown cancels every outstanding task
func (s *TickerScheduler) Shutdown() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		close(t.stop)
	}
	for _, t := range tasks {
		<-t.done
	}
}

// remove deregisters a task that exited on its own. The handle comparison
// keeps a re-registered key from being clobbered by a stale goroutine.
func (s *TickerScheduler) remove(key string, t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tasks[key]; ok && cur == t {
		delete(s.tasks, key)
	}
}
