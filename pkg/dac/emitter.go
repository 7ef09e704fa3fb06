// Package dac streams a PCM buffer to a DAC at the buffer's sample rate.
//
// An Emitter is paced one of three ways, fixed at construction:
//
//   - ModePolled: the control loop calls Tick (or Poll) as often as it
//     can; a sample is written when a full interval has elapsed on the
//     clock. The first Tick after Configure or Restart always emits.
//   - ModeCallback: Start registers the emission step with a Scheduler
//     that invokes it once per interval from its own context.
//   - ModeStreamed: Tick offers 16-bit samples to a buffered WideDAC; the
//     cursor advances only when the sink accepts.
//
// Configure and Restart never modify the state a running callback is
// using. Each builds a fresh track and publishes it with a single atomic
// store; the callback always works against one whole track.
package dac

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/pcm"
)

// DefaultBatch is how many samples a streamed Tick offers at most.
const DefaultBatch = 1

// Snapshot is a point-in-time view of the playback state.
type Snapshot struct {
	Buffer *pcm.Buffer
	// Position is the index of the next sample to emit. It equals the
	// buffer length once a one-shot buffer has finished.
	Position int
	Loop     bool
	Playing  bool
	// Generation changes on every Configure and Restart.
	Generation uint64
}

// Playback exposes playback progress to observers such as the visualizer.
type Playback interface {
	Snapshot() Snapshot
}

var _ Playback = (*Emitter)(nil)

// Options configures an Emitter.
type Options struct {
	Mode    Mode
	Channel int
	// Clock paces ModePolled and is required there.
	Clock board.Clock
	// Scheduler drives ModeCallback.
	Scheduler board.Scheduler
	// Wide is the sink for ModeStreamed.
	Wide board.WideDAC
	// Batch caps the samples offered per streamed Tick.
	Batch int
}

// track is one playback of one buffer. Only cursor, done and loop change
// after publication; polled pacing fields are owned by the Tick caller.
type track struct {
	buf        *pcm.Buffer
	length     int
	interval   uint64
	generation uint64

	cursor atomic.Int64
	done   atomic.Bool
	loop   atomic.Bool

	last   uint64
	primed bool
}

func (t *track) period() time.Duration {
	return time.Duration(t.interval) * time.Microsecond
}

// Emitter writes the samples of a configured buffer to a DAC channel.
type Emitter struct {
	mode    Mode
	channel int
	out     board.DAC
	wide    board.WideDAC
	clock   board.Clock
	sched   board.Scheduler
	batch   int

	cur     atomic.Pointer[track]
	gen     atomic.Uint64
	emitted atomic.Uint64

	mu        sync.Mutex
	running   bool
	scheduled time.Duration

	log *slog.Logger
}

// New creates an emitter. out is required in polled and callback modes.
func New(out board.DAC, opts Options) (*Emitter, error) {
	switch opts.Mode {
	case ModePolled:
		if out == nil {
			return nil, fmt.Errorf("%w: polled mode needs a DAC", ErrNoOutput)
		}
		if opts.Clock == nil {
			return nil, ErrNoClock
		}
	case ModeCallback:
		if out == nil {
			return nil, fmt.Errorf("%w: callback mode needs a DAC", ErrNoOutput)
		}
		if opts.Scheduler == nil {
			return nil, ErrNoScheduler
		}
	case ModeStreamed:
		if opts.Wide == nil {
			return nil, fmt.Errorf("%w: streamed mode needs a wide DAC", ErrNoOutput)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, opts.Mode)
	}

	if opts.Batch <= 0 {
		opts.Batch = DefaultBatch
	}

	return &Emitter{
		mode:    opts.Mode,
		channel: opts.Channel,
		out:     out,
		wide:    opts.Wide,
		clock:   opts.Clock,
		sched:   opts.Scheduler,
		batch:   opts.Batch,
		log:     slog.Default().With("component", "dac", "mode", opts.Mode.String()),
	}, nil
}

// Mode returns the pacing discipline chosen at construction.
func (e *Emitter) Mode() Mode {
	return e.mode
}

// Configure selects buf for playback from its first sample. A running
// callback schedule is re-armed when the sample rate changes.
func (e *Emitter) Configure(buf *pcm.Buffer, loop bool) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if !buf.Depth().Valid() {
		return fmt.Errorf("%w: got %d", pcm.ErrInvalidDepth, buf.Depth())
	}
	if buf.SampleRate() <= 0 {
		return pcm.ErrZeroSampleRate
	}
	if buf.Len() == 0 {
		return pcm.ErrEmpty
	}

	interval := uint64(1_000_000 / buf.SampleRate())
	if interval == 0 {
		return fmt.Errorf("%w: %d Hz", ErrZeroInterval, buf.SampleRate())
	}

	t := e.publish(buf, loop, interval)
	e.log.Debug("configured",
		"samples", buf.Len(),
		"rate", buf.SampleRate(),
		"depth", int(buf.Depth()),
		"loop", loop,
		"interval_us", interval,
		"generation", t.generation)

	return e.rearm(t)
}

// Restart plays the configured buffer again from the first sample.
func (e *Emitter) Restart() error {
	old := e.cur.Load()
	if old == nil {
		return ErrNotConfigured
	}
	t := e.publish(old.buf, old.loop.Load(), old.interval)
	e.log.Debug("restarted", "generation", t.generation)
	return nil
}

// SetLoop changes whether the current buffer wraps, keeping the cursor.
// A one-shot buffer that already finished stays finished.
func (e *Emitter) SetLoop(loop bool) error {
	t := e.cur.Load()
	if t == nil {
		return ErrNotConfigured
	}
	// Flipped in place: the generation and cursor stay with the track.
	t.loop.Store(loop)
	return nil
}

func (e *Emitter) publish(buf *pcm.Buffer, loop bool, interval uint64) *track {
	t := &track{
		buf:        buf,
		length:     buf.Len(),
		interval:   interval,
		generation: e.gen.Add(1),
	}
	t.loop.Store(loop)
	e.cur.Store(t)
	return t
}

// Tick performs one polled or streamed step at time nowMicros and reports
// whether anything was emitted. It is a no-op in callback mode, before
// Configure and after a one-shot buffer finished.
func (e *Emitter) Tick(nowMicros uint64) bool {
	t := e.cur.Load()
	if t == nil || t.done.Load() {
		return false
	}

	switch e.mode {
	case ModePolled:
		// Unsigned subtraction keeps this correct across clock wrap.
		if t.primed && nowMicros-t.last < t.interval {
			return false
		}
		t.last = nowMicros
		t.primed = true
		return e.step(t)
	case ModeStreamed:
		n := 0
		for n < e.batch && e.step(t) {
			n++
		}
		return n > 0
	default:
		return false
	}
}

// Poll is Tick at the configured clock's current time.
func (e *Emitter) Poll() bool {
	if e.clock == nil {
		return false
	}
	return e.Tick(e.clock.NowMicros())
}

// step emits the sample under the cursor and advances it.
func (e *Emitter) step(t *track) bool {
	if t.done.Load() {
		return false
	}

	i := int(t.cursor.Load())
	if e.mode == ModeStreamed {
		if !e.wide.ConsumeSample(t.buf.Int16At(i)) {
			return false
		}
	} else {
		e.out.WriteSample(e.channel, t.buf.Uint8At(i))
	}
	e.emitted.Add(1)

	i++
	if i < t.length {
		t.cursor.Store(int64(i))
		return true
	}
	if t.loop.Load() {
		t.cursor.Store(0)
		return true
	}

	t.cursor.Store(int64(i))
	t.done.Store(true)
	e.log.Info("playback done", "samples", t.length, "generation", t.generation)
	return true
}

// fire is the scheduled callback body.
func (e *Emitter) fire() {
	if t := e.cur.Load(); t != nil {
		e.step(t)
	}
}

// Start arms the scheduler at the configured interval (callback mode).
func (e *Emitter) Start() error {
	if e.mode != ModeCallback {
		return fmt.Errorf("%w: start in %s mode", ErrWrongMode, e.mode)
	}
	t := e.cur.Load()
	if t == nil {
		return ErrNotConfigured
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sched.Schedule(t.period(), e.fire); err != nil {
		return fmt.Errorf("scheduling emitter: %w", err)
	}
	e.running = true
	e.scheduled = t.period()
	e.log.Debug("scheduled", "period", e.scheduled)
	return nil
}

// Stop cancels the schedule. The cursor is kept; Start resumes.
func (e *Emitter) Stop() {
	if e.mode != ModeCallback {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.sched.Cancel()
	e.running = false
	e.scheduled = 0
}

// rearm reschedules a running callback when the interval changed.
func (e *Emitter) rearm(t *track) error {
	if e.mode != ModeCallback {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || e.scheduled == t.period() {
		return nil
	}
	if err := e.sched.Schedule(t.period(), e.fire); err != nil {
		e.running = false
		return fmt.Errorf("rescheduling emitter: %w", err)
	}
	e.scheduled = t.period()
	return nil
}

// Running reports whether the callback schedule is armed.
func (e *Emitter) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Interval returns the emission period of the configured buffer.
func (e *Emitter) Interval() time.Duration {
	if t := e.cur.Load(); t != nil {
		return t.period()
	}
	return 0
}

// Emitted returns the number of samples written since construction.
func (e *Emitter) Emitted() uint64 {
	return e.emitted.Load()
}

// Done reports whether a one-shot buffer has finished.
func (e *Emitter) Done() bool {
	t := e.cur.Load()
	return t != nil && t.done.Load()
}

// Snapshot returns the current playback state.
func (e *Emitter) Snapshot() Snapshot {
	t := e.cur.Load()
	if t == nil {
		return Snapshot{}
	}
	done := t.done.Load()
	return Snapshot{
		Buffer:     t.buf,
		Position:   int(t.cursor.Load()),
		Loop:       t.loop.Load(),
		Playing:    !done,
		Generation: t.generation,
	}
}
