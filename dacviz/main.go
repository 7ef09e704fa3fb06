package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/config"
	"github.com/itohio/dacviz/pkg/ledbar"
	"github.com/itohio/dacviz/pkg/logging"
	"github.com/itohio/dacviz/pkg/scope"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		portFlag     = flag.String("port", "", "Serial LED bar port (e.g., COM3 or /dev/ttyACM0); enables the serial link")
		clipFlag     = flag.String("clip", "", "Audio clip to load and play first (wav, aiff, mp3, ogg, dat, raw)")
		headlessFlag = flag.Bool("headless", false, "Run without a window and print the meter to stdout")
		exportFlag   = flag.String("export", "", "Write the first clip, as played, to a WAV file and exit")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
		cfg.Serial.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logFile, err := logging.Configure(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	lib, first, err := loadLibrary(cfg, *clipFlag)
	if err != nil {
		log.Fatalf("Failed to load clips: %v", err)
	}

	if *exportFlag != "" {
		if err := exportClip(lib, first, *exportFlag); err != nil {
			log.Fatalf("Failed to export: %v", err)
		}
		return
	}

	if *headlessFlag {
		if err := runHeadless(cfg, lib, first); err != nil {
			log.Printf("Headless run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	runWindow(cfg, *configFlag, lib, first)
}

// exportClip writes the named clip, or the first one, as a WAV file.
func exportClip(lib *clip.Library, name, path string) error {
	if name == "" {
		name, _, _ = lib.At(0)
	}
	buf, ok := lib.Get(name)
	if !ok {
		return clip.ErrUnknownClip
	}
	return clip.SaveWAV(path, buf)
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	lib        *clip.Library
	engine     *engine
	window     fyne.Window

	scopeWidget *scope.ScopeWidget
	leds        *ledbar.LEDBar
	connectBtn  *widget.Button
	loopBtn     *widget.Button
	clipSelect  *widget.Select
	loop        bool

	// Throttling for scope updates
	redraw throttle
}

func runWindow(cfg *config.Config, configPath string, lib *clip.Library, first string) {
	// Create Fyne application
	application := app.NewWithID("com.itohio.dacviz")

	// Create main window
	window := application.NewWindow("DAC Visualizer")
	window.Resize(fyne.NewSize(1000, 500))
	window.CenterOnScreen()

	state := &appState{
		cfg:         cfg,
		configPath:  configPath,
		lib:         lib,
		window:      window,
		scopeWidget: scope.New(cfg.Visualizer.Levels),
		leds:        ledbar.New(cfg.Visualizer.Pins),
		loop:        cfg.DAC.Loop,
		redraw:      throttle{interval: 16 * time.Millisecond}, // ~60 FPS
	}

	e, err := newEngine(cfg, lib, state.leds)
	if err != nil {
		log.Fatalf("Failed to start playback: %v", err)
	}
	state.engine = e

	// Level callbacks run on the player goroutine; copy what the scope
	// needs there and redraw on the main thread.
	e.viz.OnLevel(func(level int) {
		if !state.redraw.Allow(time.Now(), level == 0) {
			return
		}
		snap := e.emitter.Snapshot()
		win := e.viz.Window()
		UpdateWidgetOnMainThread(func() {
			state.scopeWidget.Update(snap, win, level)
		})
	})
	e.OnReport = func(suffix, payload string) {
		if suffix != "playing" {
			return
		}
		buf, _ := lib.Get(payload)
		UpdateWidgetOnMainThread(func() {
			state.scopeWidget.SetClip(payload, buf)
		})
	}

	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		container.NewPadded(state.leds),
		nil,
		nil,
		state.scopeWidget,
	)
	window.SetContent(content)

	ctx, cancel := context.WithCancel(context.Background())
	e.start(ctx)
	e.send(initialCommand(first))

	window.SetOnClosed(func() {
		cancel()
		e.stop()
	})
	window.ShowAndRun()
}
