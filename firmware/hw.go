//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/itohio/dacviz/pkg/board"
)

var (
	_ board.DAC        = dacOut{}
	_ board.GPIO       = pins{}
	_ board.BankWriter = pins{}
	_ board.Input      = pins{}
	_ board.Clock      = (*clock)(nil)
)

// dacOut writes 8-bit samples to the SAMD21 DAC. Set takes a 16-bit value
// and keeps the top ten bits.
type dacOut struct {
	dac machine.DAC
}

func (d dacOut) WriteSample(_ int, value uint8) {
	d.dac.Set(uint16(value) << 8)
}

// pins maps board pin numbers onto machine pins.
type pins struct{}

func (pins) WriteDigital(pin int, high bool) {
	machine.Pin(pin).Set(high)
}

func (p pins) WriteMask(bar []int, mask uint32) {
	for i, pin := range bar {
		p.WriteDigital(pin, mask&(1<<i) != 0)
	}
}

func (pins) ReadDigital(pin int) bool {
	return machine.Pin(pin).Get()
}

// clock counts microseconds since boot.
type clock struct {
	start time.Time
}

func newClock() *clock {
	return &clock{start: time.Now()}
}

func (c *clock) NowMicros() uint64 {
	return uint64(time.Since(c.start) / time.Microsecond)
}
