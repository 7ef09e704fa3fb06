// Package viz turns the playback position of a sample emitter into a
// quantized loudness level and renders it on an LED bar.
package viz

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/pcm"
)

// State is the combined emitter/visualizer state.
type State int

const (
	Unconfigured State = iota
	Active
	Done
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Active:
		return "active"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Visualizer follows a dac.Playback and renders one level per window as
// the cursor passes the window trigger. It is not safe for concurrent use;
// call Tick from the control loop.
type Visualizer struct {
	bar *Bar
	cfg Config
	src dac.Playback

	buf     *pcm.Buffer
	win     Window
	scale   Scale
	gen     uint64
	lastPos int
	ready   bool
	active  bool
	level   int
	// failed is the generation whose buffer could not be windowed.
	failed uint64

	callbacks []func(level int)
	cbMu      sync.RWMutex

	log *slog.Logger
}

// New creates a visualizer rendering on bar. bar may be nil when only
// OnLevel observers are needed.
func New(bar *Bar, cfg Config) (*Visualizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Visualizer{
		bar: bar,
		cfg: cfg,
		log: slog.Default().With("component", "viz"),
	}, nil
}

// Check reports whether a buffer at sampleRate can be windowed.
func (v *Visualizer) Check(sampleRate int) error {
	if _, err := NewWindow(sampleRate, v.cfg); err != nil {
		return fmt.Errorf("sizing window: %w", err)
	}
	return nil
}

// Reset attaches the visualizer to p and sizes the window for p's current
// buffer. Later buffer swaps on p are picked up by Tick.
func (v *Visualizer) Reset(p dac.Playback) error {
	v.src = p
	v.ready = false
	v.active = false
	v.failed = 0
	if p == nil {
		return ErrNoBuffer
	}
	return v.sync(p.Snapshot())
}

func (v *Visualizer) sync(s dac.Snapshot) error {
	v.ready = false
	v.active = false
	if s.Buffer == nil {
		return ErrNoBuffer
	}

	win, err := NewWindow(s.Buffer.SampleRate(), v.cfg)
	if err != nil {
		return fmt.Errorf("sizing window: %w", err)
	}

	v.buf = s.Buffer
	v.win = win
	v.scale = NewScale(s.Buffer.Depth(), v.cfg.Levels)
	v.gen = s.Generation
	v.lastPos = s.Position
	v.ready = true

	v.log.Debug("reset",
		"window", win.Length,
		"overlap", win.Overlap,
		"step", win.Step,
		"quant", v.scale.Quant,
		"generation", s.Generation)
	return nil
}

// Tick renders the level of the current window once the cursor reaches
// its trigger, and renders 0 once when a one-shot buffer finishes.
func (v *Visualizer) Tick() {
	if v.src == nil {
		return
	}

	s := v.src.Snapshot()
	if s.Buffer == nil {
		return
	}
	if !v.ready || s.Generation != v.gen {
		if s.Generation == v.failed {
			return
		}
		if err := v.sync(s); err != nil {
			v.failed = s.Generation
			v.log.Warn("cannot follow playback", "error", err, "generation", s.Generation)
			return
		}
	}

	// A looping buffer wrapped: start over from the first window.
	if s.Position < v.lastPos && s.Loop {
		v.win, _ = NewWindow(v.buf.SampleRate(), v.cfg)
	}
	v.lastPos = s.Position

	if s.Position < v.buf.Len() {
		if s.Position >= v.win.Trigger {
			v.render(LevelOf(v.buf, v.win.Start, v.win.End, v.scale, v.cfg.Levels))
			v.win.Advance()
			v.active = true
		}
		return
	}

	if v.active {
		v.render(0)
		v.active = false
	}
}

func (v *Visualizer) render(level int) {
	v.level = level
	v.bar.Render(level)

	v.cbMu.RLock()
	defer v.cbMu.RUnlock()
	for _, cb := range v.callbacks {
		cb(level)
	}
}

// OnLevel registers a function called with every rendered level.
func (v *Visualizer) OnLevel(cb func(level int)) {
	v.cbMu.Lock()
	defer v.cbMu.Unlock()
	v.callbacks = append(v.callbacks, cb)
}

// Level returns the last rendered level.
func (v *Visualizer) Level() int {
	return v.level
}

// Active reports whether a level other than the final 0 is on display.
func (v *Visualizer) Active() bool {
	return v.active
}

// Window returns the window the next reading will cover.
func (v *Visualizer) Window() Window {
	return v.win
}

// Scale returns the amplitude scale of the followed buffer.
func (v *Visualizer) Scale() Scale {
	return v.scale
}

// State combines the followed playback state with the visualizer's own.
// Looping playback never reaches Done.
func (v *Visualizer) State() State {
	if v.src == nil || !v.ready {
		return Unconfigured
	}
	s := v.src.Snapshot()
	if s.Buffer == nil {
		return Unconfigured
	}
	if s.Playing || v.active {
		return Active
	}
	return Done
}
