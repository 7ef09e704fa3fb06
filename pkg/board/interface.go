// Package board defines the hardware capabilities the sample emitter and the
// level visualizer are written against, plus host-side implementations.
package board

import "time"

// DAC accepts one 8-bit sample for an output channel.
type DAC interface {
	WriteSample(channel int, value uint8)
}

// WideDAC is a buffered 16-bit sink (I2S, delta-sigma) that may refuse a
// sample when its queue is full. ConsumeSample reports whether the sample
// was taken.
type WideDAC interface {
	ConsumeSample(value int16) bool
}

// GPIO drives digital output pins.
type GPIO interface {
	WriteDigital(pin int, high bool)
}

// BankWriter is an optional GPIO capability: set a group of pins in one
// write. Bit i of mask is the level for pins[i].
type BankWriter interface {
	WriteMask(pins []int, mask uint32)
}

// Input reads a digital input pin.
type Input interface {
	ReadDigital(pin int) bool
}

// Clock is a monotonic microsecond counter. Consumers must compare
// timestamps by subtraction so that wrap-around is harmless.
type Clock interface {
	NowMicros() uint64
}

// Scheduler invokes a function periodically until cancelled. Schedule
// replaces any previously scheduled function.
type Scheduler interface {
	Schedule(period time.Duration, fn func()) error
	Cancel()
}

// Link is a connection to an attached LED bar board.
type Link interface {
	Connect() error
	Close() error
	IsConnected() bool
	Presses() <-chan struct{}
}

var (
	_ Link       = (*Mock)(nil)
	_ DAC        = (*Mock)(nil)
	_ WideDAC    = (*Mock)(nil)
	_ GPIO       = (*Mock)(nil)
	_ BankWriter = (*Mock)(nil)
	_ Input      = (*Mock)(nil)

	_ GPIO       = Fanout(nil)
	_ BankWriter = Fanout(nil)
	_ DAC        = Discard{}

	_ Clock     = (*ManualClock)(nil)
	_ Scheduler = (*ManualScheduler)(nil)
)
