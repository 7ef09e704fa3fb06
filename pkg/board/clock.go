package board

import (
	"sync"
	"time"
)

// ManualClock is a Clock whose time only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

// NewManualClock creates a clock reading start.
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) NowMicros() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Going backwards is allowed to emulate wrap-around.
func (c *ManualClock) Set(t uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d (overflowing like a hardware counter).
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += uint64(d / time.Microsecond)
}

// ManualScheduler records the scheduled function and runs it on Fire.
type ManualScheduler struct {
	mu     sync.Mutex
	fn     func()
	period time.Duration
	count  int
}

func (s *ManualScheduler) Schedule(period time.Duration, fn func()) error {
	if period <= 0 {
		return ErrZeroPeriod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	s.period = period
	s.count++
	return nil
}

func (s *ManualScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = nil
	s.period = 0
}

// Fire invokes the scheduled function n times. It reports false when
// nothing is scheduled.
func (s *ManualScheduler) Fire(n int) bool {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	for i := 0; i < n; i++ {
		fn()
	}
	return true
}

// Period returns the current period, zero when cancelled.
func (s *ManualScheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// Scheduled reports whether a function is scheduled.
func (s *ManualScheduler) Scheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn != nil
}

// Schedules returns how many times Schedule succeeded.
func (s *ManualScheduler) Schedules() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
