package viz

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loudThenQuiet is 1000 samples at 8 kHz: 400 samples at peak 100 followed
// by silence.
func loudThenQuiet(t *testing.T) *pcm.Buffer {
	t.Helper()
	samples := make([]uint8, 1000)
	for i := range samples {
		samples[i] = 128
		if i < 400 {
			samples[i] = 228
		}
	}
	buf, err := pcm.New8(samples, 8000)
	require.NoError(t, err)
	return buf
}

type rig struct {
	emitter *dac.Emitter
	viz     *Visualizer
	board   *board.Mock
	levels  []int
	now     uint64
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{board: board.NewMock()}

	var err error
	r.emitter, err = dac.New(r.board, dac.Options{Mode: dac.ModePolled, Clock: board.NewManualClock(0)})
	require.NoError(t, err)

	r.viz, err = New(NewBar(r.board, DefaultPins), cfg)
	require.NoError(t, err)
	r.viz.OnLevel(func(level int) { r.levels = append(r.levels, level) })
	return r
}

func (r *rig) run(ticks int) {
	for i := 0; i < ticks; i++ {
		r.viz.Tick()
		r.emitter.Tick(r.now)
		r.now += 125
	}
}

func TestVisualizer_OneShotSequence(t *testing.T) {
	r := newRig(t, DefaultConfig())
	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), false))
	require.NoError(t, r.viz.Reset(r.emitter))
	assert.Equal(t, Active, r.viz.State())

	r.run(1500)

	assert.Equal(t, []int{4, 4, 4, 0, 0, 0, 0}, r.levels)
	assert.False(t, r.viz.Active())
	assert.Equal(t, Done, r.viz.State())
	assert.Equal(t, 0, r.viz.Level())
	assert.False(t, r.board.Pin(16))

	// The final 0 is rendered exactly once.
	r.run(500)
	assert.Len(t, r.levels, 7)
}

func TestVisualizer_RestartReproducesSequence(t *testing.T) {
	r := newRig(t, DefaultConfig())
	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), false))
	require.NoError(t, r.viz.Reset(r.emitter))

	r.run(1500)
	first := append([]int(nil), r.levels...)
	masks := len(r.board.Masks())

	r.levels = nil
	require.NoError(t, r.emitter.Restart())
	r.run(1500)

	assert.Equal(t, first, r.levels)
	assert.Len(t, r.board.Masks(), 2*masks)
}

func TestVisualizer_FollowsNewBuffer(t *testing.T) {
	r := newRig(t, DefaultConfig())
	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), false))
	require.NoError(t, r.viz.Reset(r.emitter))
	r.run(10)

	loud16 := make([]int16, 2000)
	for i := range loud16 {
		loud16[i] = -32768
	}
	buf, err := pcm.New16(loud16, 16000)
	require.NoError(t, err)
	require.NoError(t, r.emitter.Configure(buf, false))

	r.levels = nil
	r.run(1)
	assert.Equal(t, 800, r.viz.Window().Length)
	assert.Equal(t, 5462, r.viz.Scale().Quant)
	assert.Equal(t, []int{5}, r.levels)
	assert.True(t, r.board.Pin(21))
}

func TestVisualizer_UnwindowableBufferWarnsOnce(t *testing.T) {
	r := newRig(t, DefaultConfig())
	var logs bytes.Buffer
	r.viz.log = slog.New(slog.NewTextHandler(&logs, nil))

	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), false))
	require.NoError(t, r.viz.Reset(r.emitter))

	// 9 Hz makes a 50 ms window round to zero samples.
	slow, err := pcm.New8([]uint8{128, 228, 128}, 9)
	require.NoError(t, err)
	assert.ErrorIs(t, r.viz.Check(9), ErrZeroStep)
	assert.NoError(t, r.viz.Check(8000))
	require.NoError(t, r.emitter.Configure(slow, false))

	for i := 0; i < 1000; i++ {
		r.viz.Tick()
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "level=WARN"))
	assert.Equal(t, Unconfigured, r.viz.State())

	// A usable buffer is followed again.
	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), false))
	r.levels = nil
	r.run(1)
	assert.Equal(t, []int{4}, r.levels)
}

func TestVisualizer_LoopNeverDone(t *testing.T) {
	r := newRig(t, DefaultConfig())
	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), true))
	require.NoError(t, r.viz.Reset(r.emitter))

	r.run(3000)

	require.GreaterOrEqual(t, len(r.levels), 12)
	assert.Equal(t, []int{4, 4, 4, 0, 0, 0}, r.levels[:6])
	assert.Equal(t, r.levels[:6], r.levels[6:12])
	assert.Equal(t, Active, r.viz.State())
}

func TestVisualizer_Unconfigured(t *testing.T) {
	v, err := New(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Unconfigured, v.State())
	v.Tick()

	e, err := dac.New(board.NewMock(), dac.Options{Mode: dac.ModePolled, Clock: board.NewManualClock(0)})
	require.NoError(t, err)
	assert.ErrorIs(t, v.Reset(e), ErrNoBuffer)
	assert.ErrorIs(t, v.Reset(nil), ErrNoBuffer)
	assert.Equal(t, Unconfigured, v.State())

	_, err = New(nil, Config{})
	assert.Error(t, err)
}

func TestVisualizer_EndTrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trigger = TriggerEnd
	r := newRig(t, cfg)
	require.NoError(t, r.emitter.Configure(loudThenQuiet(t), false))
	require.NoError(t, r.viz.Reset(r.emitter))

	// Window 0 ends at 200: nothing is rendered before the cursor gets there.
	r.run(200)
	assert.Empty(t, r.levels)
	r.run(2)
	assert.Equal(t, []int{4}, r.levels)
}
