package trigger

import (
	"testing"
	"time"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/stretchr/testify/assert"
)

const pin = 4

func setup() (*Switch, *board.Mock, *board.ManualClock) {
	m := board.NewMock()
	clock := board.NewManualClock(1000)
	return NewSwitch(m, clock, pin, 0), m, clock
}

func TestSwitch_SettlesFromUndefined(t *testing.T) {
	s, _, clock := setup()
	assert.Equal(t, Undefined, s.State())

	assert.Equal(t, NoEdge, s.Update())
	assert.Equal(t, Falling, s.State())
	assert.False(t, s.IsLow())

	clock.Advance(50 * time.Millisecond)
	s.Update()
	assert.Equal(t, Falling, s.State())

	clock.Advance(time.Millisecond)
	// No edge: the previous level was unknown.
	assert.Equal(t, NoEdge, s.Update())
	assert.Equal(t, Low, s.State())
	assert.True(t, s.IsLow())
}

func TestSwitch_PressRelease(t *testing.T) {
	s, m, clock := setup()
	s.Update()
	clock.Advance(60 * time.Millisecond)
	s.Update()
	s.Update()
	assert.Equal(t, Low, s.State())

	m.SetInput(pin, true)
	assert.Equal(t, NoEdge, s.Update())
	assert.Equal(t, Rising, s.State())
	assert.True(t, s.IsLow())

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, Pressed, s.Update())
	assert.True(t, s.IsHigh())
	assert.False(t, s.Released())

	s.Update()
	m.SetInput(pin, false)
	s.Update()
	assert.Equal(t, Falling, s.State())
	assert.True(t, s.IsHigh())

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, Released, s.Update())
	assert.True(t, s.Released())
	assert.True(t, s.IsLow())

	// The edge is reported once.
	assert.Equal(t, NoEdge, s.Update())
	assert.False(t, s.Released())
}

func TestSwitch_GlitchIgnored(t *testing.T) {
	s, m, clock := setup()
	s.Update()
	clock.Advance(60 * time.Millisecond)
	s.Update()
	s.Update()

	m.SetInput(pin, true)
	s.Update()
	clock.Advance(10 * time.Millisecond)
	m.SetInput(pin, false)
	assert.Equal(t, NoEdge, s.Update())
	assert.Equal(t, Low, s.State())

	clock.Advance(time.Second)
	assert.Equal(t, NoEdge, s.Update())
	assert.Equal(t, Low, s.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "rising", Rising.String())
	assert.Equal(t, "State(9)", State(9).String())
}
