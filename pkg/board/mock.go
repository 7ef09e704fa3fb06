package board

import (
	"sync"
)

// Mock is an in-memory board used by tests and the headless app. It records
// every sample and pin write and lets callers drive inputs and button
// presses.
type Mock struct {
	mu sync.RWMutex

	samples map[int][]uint8
	wide    []int16
	refuse  int
	pins    map[int]bool
	writes  int
	masks   []uint32
	inputs  map[int]bool

	presses   chan struct{}
	connected bool

	// OnSample, when set, is called after every accepted 8-bit sample.
	OnSample func(channel int, value uint8)
}

// NewMock creates an empty mock board.
func NewMock() *Mock {
	return &Mock{
		samples: make(map[int][]uint8),
		pins:    make(map[int]bool),
		inputs:  make(map[int]bool),
		presses: make(chan struct{}, DefaultBufferSize),
	}
}

// WriteSample records an 8-bit sample.
func (m *Mock) WriteSample(channel int, value uint8) {
	m.mu.Lock()
	m.samples[channel] = append(m.samples[channel], value)
	hook := m.OnSample
	m.mu.Unlock()

	if hook != nil {
		hook(channel, value)
	}
}

// ConsumeSample records a 16-bit sample unless a refusal is pending.
func (m *Mock) ConsumeSample(value int16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refuse > 0 {
		m.refuse--
		return false
	}
	m.wide = append(m.wide, value)
	return true
}

// RefuseNext makes the next n ConsumeSample calls report a full queue.
func (m *Mock) RefuseNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refuse = n
}

// Samples returns a copy of the 8-bit samples written to channel.
func (m *Mock) Samples(channel int) []uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uint8(nil), m.samples[channel]...)
}

// WideSamples returns a copy of the accepted 16-bit samples.
func (m *Mock) WideSamples() []int16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int16(nil), m.wide...)
}

// WriteDigital records a pin level.
func (m *Mock) WriteDigital(pin int, high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[pin] = high
	m.writes++
}

// WriteMask records the mask and the resulting pin levels.
func (m *Mock) WriteMask(pins []int, mask uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range pins {
		m.pins[p] = mask&(1<<i) != 0
	}
	m.masks = append(m.masks, mask)
}

// Pin returns the last level written to pin.
func (m *Mock) Pin(pin int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pins[pin]
}

// Masks returns every mask written through WriteMask.
func (m *Mock) Masks() []uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uint32(nil), m.masks...)
}

// DigitalWrites returns the number of single-pin writes.
func (m *Mock) DigitalWrites() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// SetInput sets the level ReadDigital reports for pin.
func (m *Mock) SetInput(pin int, high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs[pin] = high
}

// ReadDigital returns the level set by SetInput.
func (m *Mock) ReadDigital(pin int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputs[pin]
}

// Connect marks the mock link as open.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}
	m.connected = true
	return nil
}

// Close closes the press channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	m.connected = false
	close(m.presses)
	return nil
}

// IsConnected returns whether Connect has been called.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Presses delivers simulated button releases.
func (m *Mock) Presses() <-chan struct{} {
	return m.presses
}

// Press simulates a button release on the board.
func (m *Mock) Press() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return ErrNotConnected
	}
	select {
	case m.presses <- struct{}{}:
	default:
	}
	return nil
}
