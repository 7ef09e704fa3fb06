package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/config"
	"github.com/itohio/dacviz/pkg/remote"
	"github.com/itohio/dacviz/pkg/viz"
)

// runHeadless plays without a window and prints the meter on every level
// change until interrupted.
func runHeadless(cfg *config.Config, lib *clip.Library, first string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newEngine(cfg, lib, nil)
	if err != nil {
		return err
	}

	e.viz.OnLevel(meterPrinter(os.Stdout, cfg.Visualizer.Levels))
	e.OnReport = func(suffix, payload string) {
		fmt.Fprintf(os.Stdout, "%s: %s\n", suffix, payload)
	}

	if e.serial != nil {
		if err := e.connectSerial(); err != nil {
			e.logger.Warn("serial link unavailable", "error", err)
		}
	}

	e.start(ctx)
	e.send(initialCommand(first))

	<-ctx.Done()
	e.stop()
	return nil
}

// meterPrinter returns a level callback that writes the meter line only
// when the level changes. Each side of the bar is levels wide.
func meterPrinter(w io.Writer, levels int) func(level int) {
	last := -1
	return func(level int) {
		if level == last {
			return
		}
		last = level
		fmt.Fprintf(w, "|%s|\n", viz.Meter(level, levels))
	}
}

// initialCommand plays first, or the first library clip.
func initialCommand(first string) remote.Command {
	if first != "" {
		return remote.Command{Kind: remote.KindPlay, Name: first}
	}
	return remote.Command{Kind: remote.KindIndex, Index: 0}
}
