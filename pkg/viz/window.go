package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/dacviz/pkg/pcm"
)

// Trigger selects the point of a window the playback cursor has to reach
// before the window's level is computed.
type Trigger int

const (
	TriggerStart Trigger = iota
	TriggerMid
	TriggerEnd
)

func (t Trigger) String() string {
	switch t {
	case TriggerStart:
		return "start"
	case TriggerMid:
		return "mid"
	case TriggerEnd:
		return "end"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// ParseTrigger parses start, mid or end. Empty selects start.
func ParseTrigger(s string) (Trigger, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "":
		return TriggerStart, nil
	case "mid", "middle":
		return TriggerMid, nil
	case "end":
		return TriggerEnd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTrigger, s)
	}
}

// Config holds the visualizer tuning.
type Config struct {
	// Window is the span of audio one level reading covers.
	Window time.Duration
	// Overlap is the fraction of a window shared with the next one.
	Overlap float64
	// Levels is the number of distinct readings, 0 included. The LED bar
	// has Levels-1 outputs.
	Levels  int
	Trigger Trigger
}

// DefaultConfig returns 50 ms windows, half overlapping, six levels,
// triggered at the window start.
func DefaultConfig() Config {
	return Config{
		Window:  50 * time.Millisecond,
		Overlap: 0.5,
		Levels:  6,
		Trigger: TriggerStart,
	}
}

// Validate checks the configuration independent of any sample rate.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return ErrWindow
	}
	if c.Overlap < 0 || c.Overlap >= 1 {
		return fmt.Errorf("%w: got %v", ErrOverlap, c.Overlap)
	}
	if c.Levels < 2 {
		return fmt.Errorf("%w: got %d", ErrLevels, c.Levels)
	}
	if c.Trigger < TriggerStart || c.Trigger > TriggerEnd {
		return fmt.Errorf("%w: %d", ErrUnknownTrigger, c.Trigger)
	}
	return nil
}

// Window is the sample range of the current level reading. Start may be
// negative and End may exceed the buffer; readers clamp.
type Window struct {
	Length  int
	Overlap int
	Step    int
	Start   int
	End     int
	// Trigger is the cursor position that releases this window.
	Trigger int

	policy Trigger
}

// NewWindow sizes the first window for a buffer at sampleRate.
// The first window ends one step into the buffer.
func NewWindow(sampleRate int, cfg Config) (Window, error) {
	if sampleRate <= 0 {
		return Window{}, pcm.ErrZeroSampleRate
	}

	length := int(math32.Round(float32(cfg.Window.Seconds()) * float32(sampleRate)))
	overlap := int(float32(length) * float32(cfg.Overlap))
	step := length - overlap
	if step <= 0 {
		return Window{}, fmt.Errorf("%w: length %d overlap %d", ErrZeroStep, length, overlap)
	}

	w := Window{
		Length:  length,
		Overlap: overlap,
		Step:    step,
		End:     step,
		Start:   step - length,
		policy:  cfg.Trigger,
	}
	w.retrigger()
	return w, nil
}

// Advance moves to the next window.
func (w *Window) Advance() {
	w.Start += w.Step
	w.End += w.Step
	w.retrigger()
}

// Bounds returns the half-open sample range [start, end).
func (w Window) Bounds() (start, end int) {
	return w.Start, w.End
}

func (w *Window) retrigger() {
	switch w.policy {
	case TriggerMid:
		w.Trigger = w.Start + w.Length/2
	case TriggerEnd:
		w.Trigger = w.End
	default:
		w.Trigger = w.Start
	}
}
