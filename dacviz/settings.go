package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/logging"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createDACTab(state),
		createVisualizerTab(state),
		createMQTTTab(state),
		createLogTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

// saveConfig validates and writes the configuration. Sections other than
// the serial port take effect on the next start.
func saveConfig(state *appState) bool {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return false
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

func restartNotice(state *appState) {
	dialog.ShowInformation("Settings", "Saved. Restart to apply.", state.window)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := board.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	enabledCheck := widget.NewCheck("", nil)
	enabledCheck.SetChecked(state.cfg.Serial.Enabled)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Enabled", Widget: enabledCheck},
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected // Fallback to selected text
				}
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil {
				state.cfg.Serial.BaudRate = baud
			}
			state.cfg.Serial.Enabled = enabledCheck.Checked
			if saveConfig(state) {
				restartNotice(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createDACTab creates the sample emitter configuration tab.
func createDACTab(state *appState) *container.TabItem {
	modeSelect := widget.NewSelect([]string{"polled", "callback", "streamed"}, nil)
	modeSelect.SetSelected(state.cfg.DAC.Mode)

	rateEntry := widget.NewEntry()
	rateEntry.SetText(strconv.Itoa(state.cfg.DAC.SampleRate))

	depthSelect := widget.NewSelect([]string{"8", "16"}, nil)
	depthSelect.SetSelected(strconv.Itoa(state.cfg.DAC.BitDepth))

	loopCheck := widget.NewCheck("", nil)
	loopCheck.SetChecked(state.cfg.DAC.Loop)

	speakerCheck := widget.NewCheck("", nil)
	speakerCheck.SetChecked(state.cfg.Speaker.Enabled)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Mode", Widget: modeSelect},
			{Text: "Sample Rate (Hz)", Widget: rateEntry},
			{Text: "Bit Depth", Widget: depthSelect},
			{Text: "Loop", Widget: loopCheck},
			{Text: "Speaker", Widget: speakerCheck},
		},
		OnSubmit: func() {
			state.cfg.DAC.Mode = modeSelect.Selected
			if rate, err := strconv.Atoi(rateEntry.Text); err == nil {
				state.cfg.DAC.SampleRate = rate
			}
			if depth, err := strconv.Atoi(depthSelect.Selected); err == nil {
				state.cfg.DAC.BitDepth = depth
			}
			state.cfg.DAC.Loop = loopCheck.Checked
			state.cfg.Speaker.Enabled = speakerCheck.Checked
			if saveConfig(state) {
				restartNotice(state)
			}
		},
	}

	return container.NewTabItem("DAC", form)
}

// createVisualizerTab creates the level meter configuration tab.
func createVisualizerTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(state.cfg.Visualizer.Window.String())

	overlapEntry := widget.NewEntry()
	overlapEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Visualizer.Overlap))

	triggerSelect := widget.NewSelect([]string{"start", "mid", "end"}, nil)
	triggerSelect.SetSelected(state.cfg.Visualizer.Trigger)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window", Widget: windowEntry},
			{Text: "Overlap (0..1)", Widget: overlapEntry},
			{Text: "Trigger", Widget: triggerSelect},
		},
		OnSubmit: func() {
			if w, err := time.ParseDuration(windowEntry.Text); err == nil {
				state.cfg.Visualizer.Window = w
			}
			if o, err := strconv.ParseFloat(overlapEntry.Text, 64); err == nil {
				state.cfg.Visualizer.Overlap = o
			}
			state.cfg.Visualizer.Trigger = triggerSelect.Selected
			if saveConfig(state) {
				restartNotice(state)
			}
		},
	}

	return container.NewTabItem("Visualizer", form)
}

// createMQTTTab creates the remote trigger configuration tab.
func createMQTTTab(state *appState) *container.TabItem {
	enabledCheck := widget.NewCheck("", nil)
	enabledCheck.SetChecked(state.cfg.MQTT.Enabled)

	brokerEntry := widget.NewEntry()
	brokerEntry.SetText(state.cfg.MQTT.Broker)

	prefixEntry := widget.NewEntry()
	prefixEntry.SetText(state.cfg.MQTT.Prefix)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Enabled", Widget: enabledCheck},
			{Text: "Broker", Widget: brokerEntry},
			{Text: "Topic Prefix", Widget: prefixEntry},
		},
		OnSubmit: func() {
			state.cfg.MQTT.Enabled = enabledCheck.Checked
			state.cfg.MQTT.Broker = brokerEntry.Text
			state.cfg.MQTT.Prefix = prefixEntry.Text
			if saveConfig(state) {
				restartNotice(state)
			}
		},
	}

	return container.NewTabItem("MQTT", form)
}

// createLogTab creates the logging configuration tab.
func createLogTab(state *appState) *container.TabItem {
	levelSelect := widget.NewSelect(logging.Levels, nil)
	levelSelect.SetSelected(state.cfg.Log.Level)

	fileEntry := widget.NewEntry()
	fileEntry.SetText(state.cfg.Log.File)
	fileEntry.SetPlaceHolder("stderr")

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Level", Widget: levelSelect},
			{Text: "File", Widget: fileEntry},
		},
		OnSubmit: func() {
			state.cfg.Log.Level = levelSelect.Selected
			state.cfg.Log.File = fileEntry.Text
			if saveConfig(state) {
				restartNotice(state)
			}
		},
	}

	return container.NewTabItem("Log", form)
}
