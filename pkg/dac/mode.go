package dac

import (
	"fmt"
	"strings"
)

// Mode selects how an Emitter is paced. It is fixed at construction.
type Mode int

const (
	// ModePolled emits from Tick when at least one interval has elapsed on
	// the clock since the previous emission.
	ModePolled Mode = iota
	// ModeCallback emits one sample per scheduler invocation.
	ModeCallback
	// ModeStreamed offers 16-bit samples to a buffered sink from Tick; the
	// sink paces playback by refusing samples when it is full.
	ModeStreamed
)

func (m Mode) String() string {
	switch m {
	case ModePolled:
		return "polled"
	case ModeCallback:
		return "callback"
	case ModeStreamed:
		return "streamed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "polled", "":
		return ModePolled, nil
	case "callback":
		return ModeCallback, nil
	case "streamed":
		return ModeStreamed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
