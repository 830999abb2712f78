package mocks

import (
	"sync"
	"time"

	"github.com/Pitskhela0/pong-game/internal/dependencies/scheduler"
)

// MockScheduler is a mock implementation of Scheduler for testing. Tasks
// never fire on their own; tests drive them with Tick and Fire.
type MockScheduler struct {
	mu       sync.Mutex
	periodic map[string]func() bool
	oneShot  map[string]func()
	// Periods records the period each periodic key was registered with
	Periods map[string]time.Duration
	// Delays records the delay each one-shot key was registered with
	Delays map[string]time.Duration
}

// Ensure MockScheduler implements Scheduler
var _ scheduler.Scheduler = (*MockScheduler)(nil)

// NewMockScheduler creates a new MockScheduler
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{
		periodic: make(map[string]func() bool),
		oneShot:  make(map[string]func()),
		Periods:  make(map[string]time.Duration),
		Delays:   make(map[string]time.Duration),
	}
}

// Every registers a periodic task without running it
func (s *MockScheduler) Every(key string, period time.Duration, fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.periodic[key]; ok {
		return
	}
	s.periodic[key] = fn
	s.Periods[key] = period
}

// After registers a one-shot task without running it
func (s *MockScheduler) After(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.oneShot[key]; ok {
		return
	}
	s.oneShot[key] = fn
	s.Delays[key] = delay
}

// Cancel removes the task under key
func (s *MockScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.periodic, key)
	delete(s.oneShot, key)
}

// Has reports whether a task is registered under key
func (s *MockScheduler) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p := s.periodic[key]
	_, o := s.oneShot[key]
	return p || o
}

// Shutdown drops all tasks
func (s *MockScheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodic = make(map[string]func() bool)
	s.oneShot = make(map[string]func())
}

// Tick fires one invocation of the periodic task under key, deregistering
// it if the task reports it is done. Returns false if no task exists.
func (s *MockScheduler) Tick(key string) bool {
	s.mu.Lock()
	fn, ok := s.periodic[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if !fn() {
		s.mu.Lock()
		delete(s.periodic, key)
		s.mu.Unlock()
	}
	return true
}

// Fire runs and deregisters the one-shot task under key. Returns false if
// no task exists.
func (s *MockScheduler) Fire(key string) bool {
	s.mu.Lock()
	fn, ok := s.oneShot[key]
	if ok {
		delete(s.oneShot, key)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	fn()
	return true
}

// HasOneShot reports whether a one-shot task is pending under key
func (s *MockScheduler) HasOneShot(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.oneShot[key]
	return ok
}
