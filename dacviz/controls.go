package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/remote"
)

// createToolbar creates the application toolbar with Connect, Settings and
// playback controls.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	if state.engine.serial == nil {
		connectBtn.Disable()
	}
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	replayBtn := widget.NewButtonWithIcon("", theme.MediaReplayIcon(), func() {
		state.engine.send(remote.Command{Kind: remote.KindReplay})
	})

	nextBtn := widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), func() {
		state.engine.press()
	})

	loopBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		handleLoopToggle(state)
	})
	state.loopBtn = loopBtn
	updateToggleButton(loopBtn, state.loop)

	clipSelect := widget.NewSelect(state.lib.Names(), func(name string) {
		state.engine.send(remote.Command{Kind: remote.KindPlay, Name: name})
	})
	clipSelect.PlaceHolder = "Select clip"
	state.clipSelect = clipSelect

	exportBtn := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
		handleExport(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn),                            // left
		container.NewHBox(replayBtn, nextBtn, loopBtn, clipSelect, exportBtn), // right
		nil, // center (spacer)
	)
}

// handleConnect opens or closes the serial LED board link.
func handleConnect(state *appState) {
	e := state.engine
	if e.serial == nil {
		return
	}

	if e.serial.IsConnected() {
		e.disconnectSerial()
		updateToggleButton(state.connectBtn, false)
		fmt.Println("Disconnected from serial port")
		return
	}

	if err := e.connectSerial(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		return
	}
	updateToggleButton(state.connectBtn, true)
	fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
}

// handleLoopToggle flips looping of the current and later clips.
func handleLoopToggle(state *appState) {
	state.loop = !state.loop
	state.engine.send(remote.Command{Kind: remote.KindLoop, Loop: state.loop})
	updateToggleButton(state.loopBtn, state.loop)
}

// handleExport saves the selected clip as a WAV file, as it is played.
func handleExport(state *appState) {
	name, buf, ok := state.lib.Current()
	if !ok {
		dialog.ShowInformation("Export", "No clip selected", state.window)
		return
	}

	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if w == nil {
			return // cancelled
		}
		path := w.URI().Path()
		w.Close()

		if err := clip.SaveWAV(path, buf); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export %s: %w", name, err), state.window)
		}
	}, state.window)
	save.SetFileName(name + ".wav")
	save.Show()
}

// updateToggleButton updates a toggle button's visual state.
func updateToggleButton(btn *widget.Button, isOn bool) {
	if isOn {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
