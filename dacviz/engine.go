package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/config"
	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/looprate"
	"github.com/itohio/dacviz/pkg/player"
	"github.com/itohio/dacviz/pkg/remote"
	"github.com/itohio/dacviz/pkg/speaker"
	"github.com/itohio/dacviz/pkg/viz"
)

// engine is the playback chain shared by the window and headless modes.
// The player goroutine is the only writer of the emitter; everything else
// talks to it through commands and presses.
type engine struct {
	cfg *config.Config
	lib *clip.Library

	speaker *speaker.Speaker
	ticker  *dac.Ticker
	emitter *dac.Emitter
	viz     *viz.Visualizer
	player  *player.Player
	serial  *board.Serial
	remote  *remote.Client

	commands chan remote.Command
	presses  chan struct{}

	// OnReport receives player status messages. Set before start.
	OnReport func(suffix, payload string)
	// flush drops audio still queued from the previous clip.
	flush func()

	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// newEngine builds the chain. leds, if not nil, receives the LED bar in
// addition to the serial board.
func newEngine(cfg *config.Config, lib *clip.Library, leds board.GPIO) (*engine, error) {
	e := &engine{
		cfg:      cfg,
		lib:      lib,
		commands: make(chan remote.Command, remote.DefaultQueue),
		presses:  make(chan struct{}, board.DefaultBufferSize),
		logger:   slog.Default().With("component", "engine"),
	}

	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	var out board.DAC = board.Discard{}
	var wide board.WideDAC
	if cfg.Speaker.Enabled {
		spk, err := speaker.New(cfg.DAC.SampleRate, cfg.Speaker.Buffer)
		if err != nil {
			e.logger.Warn("audio unavailable, playing silently", "error", err)
		} else {
			e.speaker = spk
			e.flush = spk.Flush
			out, wide = spk, spk
		}
	}
	if mode == dac.ModeStreamed && wide == nil {
		// Nothing would pace a streamed emitter.
		e.logger.Warn("streamed mode needs audio output, using polled")
		mode = dac.ModePolled
	}

	clock := dac.NewSystemClock()
	e.ticker = dac.NewTicker()
	e.emitter, err = dac.New(out, dac.Options{
		Mode:      mode,
		Channel:   cfg.DAC.Channel,
		Clock:     clock,
		Scheduler: e.ticker,
		Wide:      wide,
	})
	if err != nil {
		e.close()
		return nil, fmt.Errorf("creating emitter: %w", err)
	}

	outputs := board.Fanout{}
	if leds != nil {
		outputs = append(outputs, leds)
	}
	if cfg.Serial.Enabled {
		e.serial = board.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Visualizer.Pins)
		outputs = append(outputs, e.serial)
	}

	vcfg, err := cfg.VizConfig()
	if err != nil {
		e.close()
		return nil, err
	}
	e.viz, err = viz.New(viz.NewBar(outputs, cfg.Visualizer.Pins), vcfg)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("creating visualizer: %w", err)
	}

	if cfg.MQTT.Enabled {
		e.remote = remote.New(remote.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Prefix:   cfg.MQTT.Prefix,
		})
	}

	e.player, err = player.New(e.emitter, e.viz, lib, player.Options{
		Clock:    clock,
		Presses:  e.presses,
		Rate:     looprate.New(clock, cfg.LoopReport),
		Reporter: e,
		Loop:     cfg.DAC.Loop,
	})
	if err != nil {
		e.close()
		return nil, err
	}

	e.logger.Info("ready",
		"mode", mode.String(),
		"rate", cfg.DAC.SampleRate,
		"depth", cfg.DAC.BitDepth,
		"clips", lib.Len(),
		"audio", e.speaker != nil,
		"serial", e.serial != nil,
		"mqtt", e.remote != nil)
	return e, nil
}

// Publish implements player.Reporter.
func (e *engine) Publish(suffix, payload string) {
	if suffix == "playing" && e.flush != nil {
		e.flush()
	}
	if e.remote != nil {
		e.remote.Publish(suffix, payload)
	}
	if e.OnReport != nil {
		e.OnReport(suffix, payload)
	}
}

// start runs the player and the remote client until stop.
func (e *engine) start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	if e.remote != nil {
		e.remote.Start()
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			forward(ctx, e.remote.Commands(), e.commands)
		}()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.player.Run(ctx, e.commands); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("player stopped", "error", err)
		}
	}()
}

// stop shuts the chain down and waits for its goroutines.
func (e *engine) stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.remote != nil {
		e.remote.Stop()
	}
	// Closing the link ends its press forwarder.
	e.disconnectSerial()
	e.wg.Wait()
	e.close()
}

func (e *engine) close() {
	if e.serial != nil {
		e.serial.Close()
	}
	if e.speaker != nil {
		if over, under := e.speaker.Stats(); over+under > 0 {
			e.logger.Info("audio stats", "overruns", over, "underruns", under)
		}
		e.speaker.Close()
	}
}

// send queues a command for the player without blocking the caller.
func (e *engine) send(cmd remote.Command) {
	select {
	case e.commands <- cmd:
	default:
		e.logger.Warn("command queue full, dropping", "command", cmd.String())
	}
}

// press queues a clip advance.
func (e *engine) press() {
	select {
	case e.presses <- struct{}{}:
	default:
	}
}

// connectSerial opens the LED board link and forwards its button presses.
func (e *engine) connectSerial() error {
	if e.serial == nil {
		return errors.New("serial link disabled in configuration")
	}
	if err := e.serial.Connect(); err != nil {
		return err
	}

	boardPresses := e.serial.Presses()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for range boardPresses {
			e.press()
		}
	}()
	return nil
}

func (e *engine) disconnectSerial() {
	if e.serial != nil {
		e.serial.Close()
	}
}

// forward copies commands from in to out until in closes or ctx ends.
func forward(ctx context.Context, in <-chan remote.Command, out chan<- remote.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}
}
