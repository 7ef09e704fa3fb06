package viz

import (
	"strings"

	"github.com/itohio/dacviz/pkg/board"
)

// DefaultPins are the LED outputs of the ESP32 boards the meter was first
// built on, lowest level first.
var DefaultPins = []int{16, 17, 18, 19, 21}

// Bar renders a level as a bar graph: the first level pins high, the rest low.
type Bar struct {
	out  board.GPIO
	bank board.BankWriter
	pins []int
}

// NewBar drives pins on out. If out also implements board.BankWriter the
// whole bar is written at once.
func NewBar(out board.GPIO, pins []int) *Bar {
	b := &Bar{out: out, pins: append([]int(nil), pins...)}
	if bw, ok := out.(board.BankWriter); ok {
		b.bank = bw
	}
	return b
}

// Len returns the number of LEDs.
func (b *Bar) Len() int {
	if b == nil {
		return 0
	}
	return len(b.pins)
}

// Render lights the first level LEDs.
func (b *Bar) Render(level int) {
	if b == nil || b.out == nil {
		return
	}

	mask := board.LevelMask(level) & board.LevelMask(len(b.pins))
	if b.bank != nil {
		b.bank.WriteMask(b.pins, mask)
		return
	}
	for i, pin := range b.pins {
		b.out.WriteDigital(pin, mask&(1<<i) != 0)
	}
}

// Meter draws level as a two-ended text bar of width 2*levels, e.g.
// "   <<<>>>   " for level 3 of 6.
func Meter(level, levels int) string {
	level = min(max(level, 0), levels)
	pad := strings.Repeat(" ", levels-level)
	return pad + strings.Repeat("<", level) + strings.Repeat(">", level) + pad
}
