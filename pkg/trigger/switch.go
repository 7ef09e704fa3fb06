// Package trigger debounces a digital input into stable levels and edges.
package trigger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/dacviz/pkg/board"
)

// DefaultDebounce is how long a new level must hold before it is accepted.
const DefaultDebounce = 50 * time.Millisecond

// State of the debouncer.
type State int

const (
	Undefined State = iota
	Low
	Rising
	High
	Falling
)

func (s State) String() string {
	switch s {
	case Undefined:
		return "undefined"
	case Low:
		return "low"
	case Rising:
		return "rising"
	case High:
		return "high"
	case Falling:
		return "falling"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Edge is a completed level change.
type Edge int

const (
	NoEdge Edge = iota
	// Pressed is a settled low to high change.
	Pressed
	// Released is a settled high to low change.
	Released
)

// Switch debounces one input pin. While a new level is being confirmed
// the previous stable level is still reported; a glitch shorter than the
// debounce time returns to it.
type Switch struct {
	in       board.Input
	clock    board.Clock
	pin      int
	debounce uint64

	state State
	prev  State
	since uint64
	edge  Edge

	log *slog.Logger
}

// NewSwitch debounces pin. A zero debounce selects DefaultDebounce.
func NewSwitch(in board.Input, clock board.Clock, pin int, debounce time.Duration) *Switch {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Switch{
		in:       in,
		clock:    clock,
		pin:      pin,
		debounce: uint64(debounce / time.Microsecond),
		log:      slog.Default().With("component", "switch", "pin", pin),
	}
}

// Update samples the pin once and returns the edge it completed, if any.
func (s *Switch) Update() Edge {
	high := s.in.ReadDigital(s.pin)
	now := s.clock.NowMicros()
	s.edge = NoEdge

	switch s.state {
	case Undefined:
		s.prev = Undefined
		s.since = now
		if high {
			s.state = Rising
		} else {
			s.state = Falling
		}
	case Low:
		s.prev = Low
		if high {
			s.state = Rising
			s.since = now
		}
	case High:
		s.prev = High
		if !high {
			s.state = Falling
			s.since = now
		}
	case Rising:
		if !high {
			s.state = s.prev
		} else if now-s.since > s.debounce {
			s.settle(High)
		}
	case Falling:
		if high {
			s.state = s.prev
		} else if now-s.since > s.debounce {
			s.settle(Low)
		}
	}
	return s.edge
}

func (s *Switch) settle(to State) {
	from := s.prev
	s.state = to
	switch {
	case from == Low && to == High:
		s.edge = Pressed
	case from == High && to == Low:
		s.edge = Released
	}
	s.log.Debug("settled", "state", to.String())
}

// State returns the debouncer state.
func (s *Switch) State() State {
	return s.state
}

// IsHigh reports a stable high level, including while a fall is debounced.
func (s *Switch) IsHigh() bool {
	return s.state == High || (s.state == Falling && s.prev == High)
}

// IsLow reports a stable low level, including while a rise is debounced.
func (s *Switch) IsLow() bool {
	return s.state == Low || (s.state == Rising && s.prev == Low)
}

// Released reports whether the last Update completed a high to low change.
func (s *Switch) Released() bool {
	return s.edge == Released
}
