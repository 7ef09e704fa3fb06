package viz

import "errors"

var (
	ErrZeroStep       = errors.New("window step must be positive")
	ErrLevels         = errors.New("at least two levels are required")
	ErrOverlap        = errors.New("overlap must be in [0, 1)")
	ErrWindow         = errors.New("window duration must be positive")
	ErrNoBuffer       = errors.New("playback has no buffer")
	ErrUnknownTrigger = errors.New("unknown trigger policy")
)
