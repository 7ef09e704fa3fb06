package board

// Fanout mirrors pin writes to several outputs, e.g. an on-screen bar and
// a serial LED board. Outputs that implement BankWriter get whole masks.
type Fanout []GPIO

func (f Fanout) WriteDigital(pin int, high bool) {
	for _, out := range f {
		out.WriteDigital(pin, high)
	}
}

func (f Fanout) WriteMask(pins []int, mask uint32) {
	for _, out := range f {
		if bw, ok := out.(BankWriter); ok {
			bw.WriteMask(pins, mask)
			continue
		}
		for i, pin := range pins {
			out.WriteDigital(pin, mask&(1<<i) != 0)
		}
	}
}

// Discard is a DAC that drops every sample, for running without audio.
type Discard struct{}

func (Discard) WriteSample(int, uint8) {}
