package clip

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown clip format")
	ErrNoSamples     = errors.New("clip has no samples")
	ErrBadChannels   = errors.New("channel count must be positive")
	ErrBitDepth      = errors.New("unsupported source bit depth")
	ErrNotWav        = errors.New("not a wav file")
	ErrNotAiff       = errors.New("not an aiff file")
	ErrDatSyntax     = errors.New("malformed sample data")
	ErrUnknownClip   = errors.New("unknown clip")
	ErrEmptyLibrary  = errors.New("clip library is empty")
)
