package pcm

import "errors"

var (
	ErrInvalidDepth   = errors.New("bit depth must be 8 or 16")
	ErrZeroSampleRate = errors.New("sample rate must be positive")
	ErrEmpty          = errors.New("buffer has no samples")
	ErrOddLength      = errors.New("16-bit data must have an even number of bytes")
)
