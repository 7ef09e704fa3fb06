//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	_ "embed"
	"machine"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/itohio/dacviz/pkg/trigger"
	"github.com/itohio/dacviz/pkg/viz"
)

//go:embed chirp.raw
var chirp []byte

var (
	uart = machine.Serial

	gpio pins

	emitter *dac.Emitter
	meter   *viz.Visualizer
	button  *trigger.Switch

	clips   []*pcm.Buffer
	current int

	// Last mask received from the host, shown while nothing plays
	remoteMask  uint32
	remoteDirty bool

	// Serial buffer for reading lines
	serialBuffer [board.MaxPins + 2]byte
	serialPos    int
)

func main() {
	for _, pin := range ledPins {
		machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	PIN_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	machine.DAC0.Configure(machine.DACConfig{})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	if err := setup(); err != nil {
		// Nothing to play: blink the top LED forever
		for {
			println("#", err.Error())
			PIN_LED5.High()
			time.Sleep(200 * time.Millisecond)
			PIN_LED5.Low()
			time.Sleep(800 * time.Millisecond)
		}
	}

	// Main loop
	for {
		processSerial()

		emitter.Poll()
		meter.Tick()

		if button.Update() == trigger.Released {
			uart.Write([]byte("B\n"))
			if err := play(current + 1); err != nil {
				println("#", err.Error())
			}
		}

		if emitter.Done() && !meter.Active() && remoteDirty {
			gpio.WriteMask(ledPins, remoteMask)
			remoteDirty = false
		}
	}
}

func setup() error {
	buf, err := pcm.New8(chirp, SAMPLE_RATE)
	if err != nil {
		return err
	}
	clips = append(clips, buf)

	buf, err = pcm.New8(tone(TONE_FREQUENCY, TONE_DURATION), SAMPLE_RATE)
	if err != nil {
		return err
	}
	clips = append(clips, buf)

	clk := newClock()

	emitter, err = dac.New(dacOut{dac: machine.DAC0}, dac.Options{
		Mode:  dac.ModePolled,
		Clock: clk,
	})
	if err != nil {
		return err
	}

	meter, err = viz.New(viz.NewBar(gpio, ledPins), viz.Config{
		Window:  WINDOW,
		Overlap: OVERLAP,
		Levels:  LEVELS,
		Trigger: viz.TriggerStart,
	})
	if err != nil {
		return err
	}

	button = trigger.NewSwitch(gpio, clk, int(PIN_BUTTON), DEBOUNCE)

	return play(0)
}

// play starts clip i from its first sample. Indices wrap, so pressing the
// button on the last clip starts the first one again.
func play(i int) error {
	current = i % len(clips)
	if err := emitter.Configure(clips[current], false); err != nil {
		return err
	}
	return meter.Reset(emitter)
}

// tone renders a decaying sine as 8-bit unsigned samples.
func tone(freq float32, d time.Duration) []uint8 {
	n := int(d.Seconds() * SAMPLE_RATE)
	out := make([]uint8, n)
	for i := range out {
		t := float32(i) / SAMPLE_RATE
		env := 1 - float32(i)/float32(n)
		v := 128 + 127*env*math32.Sin(2*math32.Pi*freq*t)
		out[i] = uint8(math32.Round(v))
	}
	return out
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			if serialPos > 0 {
				updateRemoteLevel(string(serialBuffer[:serialPos]))
			}
			// Reset buffer regardless of length
			serialPos = 0
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		}
		// Overlong lines are cut short and rejected by ParseMask
	}
}

func updateRemoteLevel(line string) {
	mask, _, err := board.ParseMask(line)
	if err != nil {
		println("#", err.Error())
		return
	}
	remoteMask = mask
	remoteDirty = true
}
