// Package scope is a Fyne widget that draws the playing clip with the
// playback cursor and the visualizer window on top.
package scope

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/itohio/dacviz/pkg/viz"
)

// ScopeWidget displays the waveform of the current clip.
type ScopeWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu       sync.RWMutex
	name     string
	buf      *pcm.Buffer
	envelope []Span
	position int
	window   viz.Window
	level    int
	levels   int
	loop     bool

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget for a meter with levels readings.
func New(levels int) *ScopeWidget {
	s := &ScopeWidget{
		levels:           levels,
		envelope:         make([]Span, 0, 1000),
		maxDisplayPoints: 1000, // Limit columns for efficient rendering
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// SetClip replaces the displayed clip. Call it on the Fyne main thread.
func (s *ScopeWidget) SetClip(name string, buf *pcm.Buffer) {
	s.mu.Lock()
	s.name = name
	s.buf = buf
	s.envelope = Envelope(s.envelope, buf, s.maxDisplayPoints)
	s.position = 0
	s.window = viz.Window{}
	s.level = 0
	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// Update moves the cursor and the window marker. It should be called from
// the level callback using fyne.Do().
func (s *ScopeWidget) Update(snap dac.Snapshot, win viz.Window, level int) {
	s.mu.Lock()
	if snap.Buffer != nil && snap.Buffer != s.buf {
		s.buf = snap.Buffer
		s.envelope = Envelope(s.envelope, snap.Buffer, s.maxDisplayPoints)
	}
	s.position = snap.Position
	s.loop = snap.Loop
	s.window = win
	s.level = level
	s.mu.Unlock()

	s.Refresh()
}

// view is a consistent copy of the widget state for one redraw.
type view struct {
	name     string
	envelope []Span
	length   int
	rate     int
	position int
	window   viz.Window
	level    int
	levels   int
	loop     bool
}

func (s *ScopeWidget) snapshot() view {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := view{
		name:     s.name,
		envelope: s.envelope,
		position: s.position,
		window:   s.window,
		level:    s.level,
		levels:   s.levels,
		loop:     s.loop,
	}
	if s.buf != nil {
		v.length = s.buf.Len()
		v.rate = s.buf.SampleRate()
	}
	return v
}

// elapsed returns the playback time at the cursor.
func (v view) elapsed() time.Duration {
	if v.rate <= 0 {
		return 0
	}
	return time.Duration(v.position) * time.Second / time.Duration(v.rate)
}

// total returns the clip duration.
func (v view) total() time.Duration {
	if v.rate <= 0 {
		return 0
	}
	return time.Duration(v.length) * time.Second / time.Duration(v.rate)
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(s)
}
