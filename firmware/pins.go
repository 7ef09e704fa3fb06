//go:build tinygo

package main

import (
	"machine"
	"time"
)

const (
	// Playback configuration
	SAMPLE_RATE    = 8000 // Embedded clips are 8-bit unsigned at this rate
	TONE_FREQUENCY = 440  // Generated second clip (Hz)
	TONE_DURATION  = 400 * time.Millisecond

	// Visualizer configuration
	WINDOW  = 50 * time.Millisecond // 400 samples at 8 kHz
	OVERLAP = 0.5
	LEVELS  = 6 // Five LEDs plus "all off"

	// Button configuration
	DEBOUNCE = 50 * time.Millisecond

	// DAC pin is A0 (PA02), the only DAC output on the SAMD21.
	PIN_DAC = machine.A0

	// LED pins, lowest level first
	PIN_LED1 = machine.D1
	PIN_LED2 = machine.D2
	PIN_LED3 = machine.D3
	PIN_LED4 = machine.D4
	PIN_LED5 = machine.D5

	// Button pin (active high, pulled down)
	PIN_BUTTON = machine.D6

	// Serial configuration
	// Host to board: "L10100\n" mirrors a remote level while idle.
	// Board to host: "B\n" on every button release.
	UART_BAUD_RATE = 115200
)

var ledPins = []int{
	int(PIN_LED1),
	int(PIN_LED2),
	int(PIN_LED3),
	int(PIN_LED4),
	int(PIN_LED5),
}
