package dac

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/dacviz/pkg/board"
)

var (
	_ board.Scheduler = (*Ticker)(nil)
	_ board.Clock     = (*SystemClock)(nil)
)

// Ticker is a Scheduler backed by a goroutine and a time.Ticker. The
// scheduled function must not call Schedule or Cancel itself.
type Ticker struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker creates an idle ticker.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Schedule starts calling fn every period, replacing any previous function.
func (t *Ticker) Schedule(period time.Duration, fn func()) error {
	if period <= 0 {
		return board.ErrZeroPeriod
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return nil
}

// Cancel stops the ticker and waits for an in-flight call to return.
func (t *Ticker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
}

func (t *Ticker) stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

// SystemClock reads microseconds elapsed since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock starting at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowMicros() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}
