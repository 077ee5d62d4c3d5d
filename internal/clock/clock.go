package clock

import (
	"sync"
	"testing"
	"time"
)

// Clock is the single source of "now" for billing math and overdue detection
type Clock interface {
	UtcNow() time.Time
}

type systemClock struct{}

// New returns the wall clock
func New() Clock {
	return systemClock{}
}

func (systemClock) UtcNow() time.Time {
	return time.Now().UTC()
}

// Mock is a settable clock for tests
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMock returns a mock clock fixed at 2025-01-01 00:00 UTC
func NewMock(t testing.TB) *Mock {
	t.Helper()
	return &Mock{now: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *Mock) UtcNow() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t.UTC()
}

// Advance moves the clock forward by d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
