// Package looprate reports how often a control loop runs.
package looprate

import (
	"log/slog"
	"time"

	"github.com/itohio/dacviz/pkg/board"
)

// DefaultInterval is the reporting period.
const DefaultInterval = 5 * time.Second

// Reporter counts Loop calls and logs calls per second once per interval.
type Reporter struct {
	clock    board.Clock
	interval uint64

	started bool
	prev    uint64
	count   uint64
	last    float64

	// OnReport, when set, receives every computed rate.
	OnReport func(callsPerSec float64)

	log *slog.Logger
}

// New creates a reporter. A zero interval selects DefaultInterval.
func New(clock board.Clock, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		clock:    clock,
		interval: uint64(interval / time.Microsecond),
		log:      slog.Default().With("component", "looprate"),
	}
}

// Loop records one call. It returns true when a report was produced.
func (r *Reporter) Loop() bool {
	now := r.clock.NowMicros()
	if !r.started {
		r.started = true
		r.prev = now
	}

	r.count++
	elapsed := now - r.prev
	if elapsed < r.interval {
		return false
	}

	r.last = float64(r.count) / (float64(elapsed) / 1e6)
	r.log.Info("loop rate",
		"period", time.Duration(elapsed)*time.Microsecond,
		"calls_per_sec", r.last)
	if r.OnReport != nil {
		r.OnReport(r.last)
	}

	r.prev = now
	r.count = 0
	return true
}

// Rate returns the last reported calls per second.
func (r *Reporter) Rate() float64 {
	return r.last
}
