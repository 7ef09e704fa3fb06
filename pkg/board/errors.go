package board

import "errors"

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrInvalidMask      = errors.New("invalid mask line")
	ErrZeroPeriod       = errors.New("schedule period must be positive")
)
