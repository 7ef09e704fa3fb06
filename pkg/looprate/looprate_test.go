package looprate

import (
	"testing"
	"time"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestReporter(t *testing.T) {
	clock := board.NewManualClock(0)
	r := New(clock, time.Second)

	var reports []float64
	r.OnReport = func(rate float64) { reports = append(reports, rate) }

	for i := 0; i < 1000; i++ {
		assert.False(t, r.Loop())
		clock.Advance(time.Millisecond)
	}
	assert.True(t, r.Loop())
	assert.InDelta(t, 1001, r.Rate(), 1e-9)

	for i := 0; i < 99; i++ {
		clock.Advance(10 * time.Millisecond)
		r.Loop()
	}
	clock.Advance(10 * time.Millisecond)
	assert.True(t, r.Loop())

	assert.Len(t, reports, 2)
	assert.InDelta(t, 100, reports[1], 1e-9)
}

func TestReporter_DefaultInterval(t *testing.T) {
	r := New(board.NewManualClock(0), 0)
	assert.Equal(t, uint64(5_000_000), r.interval)
	assert.Zero(t, r.Rate())
}
