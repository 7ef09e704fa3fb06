package dac

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicker_ScheduleCancel(t *testing.T) {
	tk := NewTicker()
	assert.ErrorIs(t, tk.Schedule(0, func() {}), board.ErrZeroPeriod)

	var calls atomic.Int64
	require.NoError(t, tk.Schedule(time.Millisecond, func() { calls.Add(1) }))

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, time.Millisecond)

	tk.Cancel()
	stopped := calls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())

	tk.Cancel()
}

func TestTicker_DrivesEmitterWhileSwapping(t *testing.T) {
	m := board.NewMock()
	tk := NewTicker()
	defer tk.Cancel()

	e, err := New(m, Options{Mode: ModeCallback, Scheduler: tk})
	require.NoError(t, err)

	low, err := pcm.New8([]uint8{10, 10, 10}, 10_000)
	require.NoError(t, err)
	high, err := pcm.New8([]uint8{200, 200, 200, 200, 200}, 10_000)
	require.NoError(t, err)

	require.NoError(t, e.Configure(low, true))
	require.NoError(t, e.Start())

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			require.NoError(t, e.Configure(high, true))
		} else {
			require.NoError(t, e.Restart())
		}
		time.Sleep(200 * time.Microsecond)
	}

	assert.Eventually(t, func() bool { return e.Emitted() > 0 }, 2*time.Second, time.Millisecond)
	e.Stop()

	for _, v := range m.Samples(0) {
		assert.Contains(t, []uint8{10, 200}, v)
	}
	snap := e.Snapshot()
	assert.Less(t, snap.Position, snap.Buffer.Len())
}

func TestSystemClock(t *testing.T) {
	c := NewSystemClock()
	a := c.NowMicros()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, c.NowMicros()-a, uint64(1000))
}
