package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/looprate"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/itohio/dacviz/pkg/remote"
	"github.com/itohio/dacviz/pkg/trigger"
	"github.com/itohio/dacviz/pkg/viz"
)

const buttonPin = 4

type published struct {
	suffix  string
	payload string
}

type recorder struct {
	messages []published
}

func (r *recorder) Publish(suffix, payload string) {
	r.messages = append(r.messages, published{suffix, payload})
}

func constant(t *testing.T, value uint8, n int) *pcm.Buffer {
	t.Helper()
	samples := make([]uint8, n)
	for i := range samples {
		samples[i] = value
	}
	buf, err := pcm.New8(samples, 8000)
	require.NoError(t, err)
	return buf
}

type rig struct {
	player   *Player
	emitter  *dac.Emitter
	viz      *viz.Visualizer
	board    *board.Mock
	clock    *board.ManualClock
	reporter *recorder
}

func newRig(t *testing.T, mode dac.Mode, opts Options) *rig {
	t.Helper()
	r := &rig{
		board:    board.NewMock(),
		clock:    board.NewManualClock(0),
		reporter: &recorder{},
	}

	var err error
	r.emitter, err = dac.New(r.board, dac.Options{
		Mode:      mode,
		Clock:     r.clock,
		Scheduler: &board.ManualScheduler{},
	})
	require.NoError(t, err)

	r.viz, err = viz.New(viz.NewBar(r.board, viz.DefaultPins), viz.DefaultConfig())
	require.NoError(t, err)

	lib := clip.NewLibrary()
	require.NoError(t, lib.Add("loud", constant(t, 228, 800)))
	require.NoError(t, lib.Add("quiet", constant(t, 128, 800)))
	require.NoError(t, lib.Add("beep", constant(t, 178, 400)))

	opts.Clock = r.clock
	opts.Reporter = r.reporter
	r.player, err = New(r.emitter, r.viz, lib, opts)
	require.NoError(t, err)
	return r
}

// steps runs n loop iterations one sample period apart.
func (r *rig) steps(n int) {
	for i := 0; i < n; i++ {
		r.player.Step()
		r.clock.Advance(125 * time.Microsecond)
	}
}

func TestNew_Validation(t *testing.T) {
	m := board.NewMock()
	em, err := dac.New(m, dac.Options{Mode: dac.ModePolled, Clock: board.NewManualClock(0)})
	require.NoError(t, err)
	v, err := viz.New(nil, viz.DefaultConfig())
	require.NoError(t, err)

	_, err = New(nil, v, clip.NewLibrary(), Options{})
	assert.ErrorIs(t, err, ErrNoEmitter)

	_, err = New(em, v, clip.NewLibrary(), Options{})
	assert.ErrorIs(t, err, ErrNoClock)

	p, err := New(em, v, clip.NewLibrary(), Options{Clock: board.NewManualClock(0)})
	require.NoError(t, err)
	assert.Zero(t, p.idle)
}

func TestPlay(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})

	require.NoError(t, r.player.Play("LOUD"))
	assert.Equal(t, "loud", r.player.Current())
	assert.Equal(t, []published{{"playing", "loud"}}, r.reporter.messages)

	r.steps(10)
	assert.Len(t, r.board.Samples(0), 10)
	assert.Equal(t, uint8(228), r.board.Samples(0)[0])
	// Peak 100 at 8 bits lights four LEDs.
	assert.Equal(t, 4, r.viz.Level())

	assert.ErrorIs(t, r.player.Play("missing"), clip.ErrUnknownClip)
}

func TestNext_Cycles(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})

	var order []string
	for i := 0; i < 4; i++ {
		require.NoError(t, r.player.Next())
		order = append(order, r.player.Current())
	}
	assert.Equal(t, []string{"loud", "quiet", "beep", "loud"}, order)
}

func TestPlay_UnwindowableClipKeepsCurrent(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})
	require.NoError(t, r.player.Play("loud"))
	r.steps(10)
	before := r.emitter.Snapshot()

	slow, err := pcm.New8([]uint8{128, 228, 128}, 9)
	require.NoError(t, err)
	require.NoError(t, r.player.lib.Add("slow", slow))

	err = r.player.Play("slow")
	assert.ErrorIs(t, err, viz.ErrZeroStep)
	assert.Equal(t, "loud", r.player.Current())

	after := r.emitter.Snapshot()
	assert.Equal(t, before.Generation, after.Generation)
	assert.NotSame(t, slow, after.Buffer)
	assert.Equal(t, []published{{"playing", "loud"}}, r.reporter.messages)

	// The previous clip keeps playing.
	r.steps(10)
	assert.Equal(t, before.Position+10, r.emitter.Snapshot().Position)
}

func TestReplay(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})

	// Nothing configured yet: replay plays the first clip.
	require.NoError(t, r.player.Replay())
	assert.Equal(t, "loud", r.player.Current())

	r.steps(900)
	assert.True(t, r.emitter.Done())
	assert.Len(t, r.board.Samples(0), 800)

	gen := r.emitter.Snapshot().Generation
	require.NoError(t, r.player.Replay())
	assert.False(t, r.emitter.Done())
	assert.Greater(t, r.emitter.Snapshot().Generation, gen)

	r.steps(900)
	assert.Len(t, r.board.Samples(0), 1600)
}

func TestSetLoop(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})

	// Before any clip the setting is remembered.
	require.NoError(t, r.player.SetLoop(true))
	assert.True(t, r.player.Loop())

	require.NoError(t, r.player.Play("beep"))
	assert.True(t, r.emitter.Snapshot().Loop)

	r.steps(1000)
	assert.False(t, r.emitter.Done())

	require.NoError(t, r.player.SetLoop(false))
	assert.False(t, r.emitter.Snapshot().Loop)
	r.steps(1000)
	assert.True(t, r.emitter.Done())
}

func TestApply(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})

	require.NoError(t, r.player.Apply(remote.Command{Kind: remote.KindIndex, Index: 2}))
	assert.Equal(t, "beep", r.player.Current())

	require.NoError(t, r.player.Apply(remote.Command{Kind: remote.KindPlay, Name: "quiet"}))
	assert.Equal(t, "quiet", r.player.Current())

	require.NoError(t, r.player.Apply(remote.Command{Kind: remote.KindNext}))
	assert.Equal(t, "beep", r.player.Current())

	require.NoError(t, r.player.Apply(remote.Command{Kind: remote.KindLoop, Loop: true}))
	assert.True(t, r.emitter.Snapshot().Loop)

	require.NoError(t, r.player.Apply(remote.Command{Kind: remote.KindReplay}))

	require.NoError(t, r.player.Apply(remote.Command{Kind: remote.KindList}))
	last := r.reporter.messages[len(r.reporter.messages)-1]
	assert.Equal(t, published{"clips", "loud,quiet,beep"}, last)

	assert.Error(t, r.player.Apply(remote.Command{Kind: remote.KindIndex, Index: 7}))
	assert.ErrorIs(t, r.player.Apply(remote.Command{Kind: remote.Kind(99)}), remote.ErrUnknownCommand)
}

func TestCallbackMode_StartsScheduler(t *testing.T) {
	r := newRig(t, dac.ModeCallback, Options{})
	assert.Equal(t, DefaultIdle, r.player.idle)
	assert.False(t, r.emitter.Running())

	require.NoError(t, r.player.Next())
	assert.True(t, r.emitter.Running())

	// Step never emits in callback mode.
	assert.False(t, r.player.Step())
}

func TestStep_ButtonAdvances(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})
	r.player.button = trigger.NewSwitch(r.board, r.clock, buttonPin, 10*time.Millisecond)
	r.player.rate = looprate.New(r.clock, time.Second)

	// Settle low, press, then release.
	r.steps(100)
	r.board.SetInput(buttonPin, true)
	r.steps(100)
	assert.Empty(t, r.player.Current())

	r.board.SetInput(buttonPin, false)
	r.steps(100)
	assert.Equal(t, "loud", r.player.Current())
}

func TestRun_Commands(t *testing.T) {
	r := newRig(t, dac.ModePolled, Options{})

	commands := make(chan remote.Command, 2)
	commands <- remote.Command{Kind: remote.KindPlay, Name: "quiet"}
	commands <- remote.Command{Kind: remote.KindPlay, Name: "nonexistent"}
	close(commands)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.player.Run(ctx, commands)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "quiet", r.player.Current())
	assert.NotEmpty(t, r.board.Samples(0))
}

func TestRun_Presses(t *testing.T) {
	presses := make(chan struct{}, 2)
	r := newRig(t, dac.ModeCallback, Options{Presses: presses})

	presses <- struct{}{}
	presses <- struct{}{}
	close(presses)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.player.Run(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "quiet", r.player.Current())
	// Run stops the schedule on exit.
	assert.False(t, r.emitter.Running())
}
