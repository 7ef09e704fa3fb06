// Package player runs the control loop that ties clips, the sample emitter
// and the level visualizer together.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/looprate"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/itohio/dacviz/pkg/remote"
	"github.com/itohio/dacviz/pkg/trigger"
	"github.com/itohio/dacviz/pkg/viz"
)

var (
	ErrNoClock   = errors.New("player needs a clock in polled and streamed modes")
	ErrNoEmitter = errors.New("player needs an emitter, a visualizer and a library")
)

// DefaultIdle is how long Run waits after a step that emitted nothing in
// callback and streamed modes. Polled mode only yields.
const DefaultIdle = time.Millisecond

// Reporter publishes status messages, e.g. to MQTT.
type Reporter interface {
	Publish(suffix string, payload string)
}

// Options configures optional player inputs.
type Options struct {
	// Clock paces polled and streamed emission.
	Clock board.Clock
	// Button advances to the next clip when released.
	Button *trigger.Switch
	// Presses advances to the next clip on every receive.
	Presses <-chan struct{}
	// Rate counts loop iterations.
	Rate *looprate.Reporter
	// Reporter receives playing and clip list notifications.
	Reporter Reporter
	// Loop is the initial loop setting for played clips.
	Loop bool
	Idle time.Duration
}

// Player is not safe for concurrent use. Run is its only caller in the
// application; remote commands reach it through a channel.
type Player struct {
	emitter *dac.Emitter
	viz     *viz.Visualizer
	lib     *clip.Library

	clock    board.Clock
	button   *trigger.Switch
	presses  <-chan struct{}
	rate     *looprate.Reporter
	reporter Reporter
	idle     time.Duration

	loop    bool
	current string

	logger *slog.Logger
}

func New(em *dac.Emitter, v *viz.Visualizer, lib *clip.Library, opts Options) (*Player, error) {
	if em == nil || v == nil || lib == nil {
		return nil, ErrNoEmitter
	}
	if em.Mode() != dac.ModeCallback && opts.Clock == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoClock, em.Mode())
	}

	idle := opts.Idle
	if idle <= 0 && em.Mode() != dac.ModePolled {
		idle = DefaultIdle
	}

	return &Player{
		emitter:  em,
		viz:      v,
		lib:      lib,
		clock:    opts.Clock,
		button:   opts.Button,
		presses:  opts.Presses,
		rate:     opts.Rate,
		reporter: opts.Reporter,
		idle:     idle,
		loop:     opts.Loop,
		logger:   slog.Default().With("component", "player"),
	}, nil
}

// Play selects a clip by name and plays it from the start.
func (p *Player) Play(name string) error {
	buf, err := p.lib.Select(name)
	if err != nil {
		return err
	}
	if canonical, _, ok := p.lib.Current(); ok {
		name = canonical
	}
	return p.start(name, buf)
}

// PlayIndex selects the i-th library clip and plays it from the start.
func (p *Player) PlayIndex(i int) error {
	name, buf, err := p.lib.SelectIndex(i)
	if err != nil {
		return err
	}
	return p.start(name, buf)
}

// Next plays the clip after the current one, wrapping around.
func (p *Player) Next() error {
	name, buf, err := p.lib.Next()
	if err != nil {
		return err
	}
	return p.start(name, buf)
}

// Replay restarts the current clip. With nothing played yet it plays the
// first clip.
func (p *Player) Replay() error {
	err := p.emitter.Restart()
	if errors.Is(err, dac.ErrNotConfigured) {
		return p.Next()
	}
	if err != nil {
		return err
	}
	p.logger.Info("replaying", "clip", p.current)
	p.report("playing", p.current)
	return nil
}

// SetLoop changes looping of the current clip and of clips played later.
func (p *Player) SetLoop(loop bool) error {
	p.loop = loop
	if err := p.emitter.SetLoop(loop); err != nil && !errors.Is(err, dac.ErrNotConfigured) {
		return err
	}
	p.logger.Info("loop", "enabled", loop)
	return nil
}

// Apply executes a remote command.
func (p *Player) Apply(cmd remote.Command) error {
	p.logger.Debug("apply", "command", cmd.String())

	switch cmd.Kind {
	case remote.KindPlay:
		return p.Play(cmd.Name)
	case remote.KindIndex:
		return p.PlayIndex(cmd.Index)
	case remote.KindNext:
		return p.Next()
	case remote.KindReplay:
		return p.Replay()
	case remote.KindLoop:
		return p.SetLoop(cmd.Loop)
	case remote.KindList:
		names := p.lib.Names()
		p.logger.Info("clips", "names", names)
		p.report("clips", strings.Join(names, ","))
		return nil
	default:
		return fmt.Errorf("%w: %s", remote.ErrUnknownCommand, cmd.Kind)
	}
}

// Step runs one loop iteration and reports whether a sample was emitted
// by it. Callback mode emits from the scheduler, so Step never does.
func (p *Player) Step() bool {
	if p.rate != nil {
		p.rate.Loop()
	}

	emitted := false
	if p.emitter.Mode() != dac.ModeCallback {
		emitted = p.emitter.Tick(p.clock.NowMicros())
	}

	p.viz.Tick()

	if p.button != nil && p.button.Update() == trigger.Released {
		p.logger.Debug("button released")
		if err := p.Next(); err != nil {
			p.logger.Warn("next clip", "error", err)
		}
	}

	return emitted
}

// Run steps until ctx is cancelled, applying commands and presses between
// steps. commands may be nil.
func (p *Player) Run(ctx context.Context, commands <-chan remote.Command) error {
	defer p.emitter.Stop()

	presses := p.presses
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if err := p.Apply(cmd); err != nil {
				p.logger.Warn("command failed", "command", cmd.String(), "error", err)
			}
		case _, ok := <-presses:
			if !ok {
				presses = nil
				continue
			}
			if err := p.Next(); err != nil {
				p.logger.Warn("next clip", "error", err)
			}
		default:
		}

		if p.Step() {
			continue
		}
		if p.idle > 0 {
			time.Sleep(p.idle)
		} else {
			runtime.Gosched()
		}
	}
}

// Current returns the name of the clip last played.
func (p *Player) Current() string {
	return p.current
}

// Loop returns the loop setting.
func (p *Player) Loop() bool {
	return p.loop
}

func (p *Player) start(name string, buf *pcm.Buffer) error {
	// Refuse before touching the emitter so the previous clip keeps playing.
	if err := p.viz.Check(buf.SampleRate()); err != nil {
		return fmt.Errorf("visualizing %q: %w", name, err)
	}
	if err := p.emitter.Configure(buf, p.loop); err != nil {
		return fmt.Errorf("configuring %q: %w", name, err)
	}
	if err := p.viz.Reset(p.emitter); err != nil {
		return fmt.Errorf("visualizing %q: %w", name, err)
	}
	if p.emitter.Mode() == dac.ModeCallback && !p.emitter.Running() {
		if err := p.emitter.Start(); err != nil {
			return err
		}
	}

	p.current = name
	p.logger.Info("playing",
		"clip", name,
		"samples", buf.Len(),
		"duration", buf.Duration(),
		"loop", p.loop)
	p.report("playing", name)
	return nil
}

func (p *Player) report(suffix, payload string) {
	if p.reporter != nil {
		p.reporter.Publish(suffix, payload)
	}
}
