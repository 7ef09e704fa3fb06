package scope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/dacviz/pkg/pcm"
)

func TestEnvelope_8bit(t *testing.T) {
	samples := []uint8{128, 255, 128, 0, 128, 192, 64, 128}
	buf, err := pcm.New8(samples, 8000)
	require.NoError(t, err)

	env := Envelope(nil, buf, 4)
	require.Len(t, env, 4)
	assert.Equal(t, Span{Lo: 0, Hi: 127.0 / 128}, env[0])
	assert.Equal(t, Span{Lo: -1, Hi: 0}, env[1])
	assert.Equal(t, Span{Lo: 0, Hi: 0.5}, env[2])
	assert.Equal(t, Span{Lo: -0.5, Hi: 0}, env[3])
}

func TestEnvelope_16bit(t *testing.T) {
	buf, err := pcm.New16([]int16{-32768, 16384, 0}, 8000)
	require.NoError(t, err)

	env := Envelope(nil, buf, 10)
	// Never more columns than samples.
	require.Len(t, env, 3)
	assert.Equal(t, Span{Lo: -1, Hi: -1}, env[0])
	assert.Equal(t, Span{Lo: 0.5, Hi: 0.5}, env[1])
}

func TestEnvelope_ReusesDestination(t *testing.T) {
	buf, err := pcm.New8(make([]uint8, 1000), 8000)
	require.NoError(t, err)

	dst := make([]Span, 0, 100)
	env := Envelope(dst, buf, 50)
	assert.Len(t, env, 50)
	assert.Equal(t, 100, cap(env))

	env = Envelope(env, nil, 50)
	assert.Empty(t, env)
}

func TestView_Times(t *testing.T) {
	v := view{length: 8000, rate: 8000, position: 2000}
	assert.Equal(t, 250*time.Millisecond, v.elapsed())
	assert.Equal(t, time.Second, v.total())
	assert.Zero(t, view{}.total())
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0.25s", formatTime(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatTime(1500*time.Millisecond))
}
