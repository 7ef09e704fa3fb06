package dac

import "errors"

var (
	ErrNilBuffer     = errors.New("nil sample buffer")
	ErrZeroInterval  = errors.New("sample rate too high: emission interval is zero")
	ErrNotConfigured = errors.New("emitter has no buffer configured")
	ErrNoOutput      = errors.New("no output for the selected mode")
	ErrNoClock       = errors.New("polled mode requires a clock")
	ErrNoScheduler   = errors.New("callback mode requires a scheduler")
	ErrWrongMode     = errors.New("operation not supported in this mode")
	ErrUnknownMode   = errors.New("unknown emitter mode")
)
