package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/dacviz/pkg/dac"
	"github.com/itohio/dacviz/pkg/logging"
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/itohio/dacviz/pkg/viz"
)

// Config represents the application configuration.
type Config struct {
	DAC        DACConfig        `yaml:"dac"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
	Clips      []ClipConfig     `yaml:"clips"`
	Serial     SerialConfig     `yaml:"serial"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Speaker    SpeakerConfig    `yaml:"speaker"`
	Log        LogConfig        `yaml:"log"`
	LoopReport time.Duration    `yaml:"loop_report"` // Loop rate report interval
}

// DACConfig contains sample emitter configuration.
type DACConfig struct {
	Mode       string `yaml:"mode"`        // polled, callback or streamed
	SampleRate int    `yaml:"sample_rate"` // Clips are resampled to this rate (Hz)
	BitDepth   int    `yaml:"bit_depth"`   // 8 or 16
	Loop       bool   `yaml:"loop"`
	Channel    int    `yaml:"channel"`
}

// VisualizerConfig contains LED level meter configuration.
type VisualizerConfig struct {
	Window  time.Duration `yaml:"window"`
	Overlap float64       `yaml:"overlap"` // Fraction of a window shared with the next
	Levels  int           `yaml:"levels"`  // Number of levels including 0
	Trigger string        `yaml:"trigger"` // start, mid or end
	Pins    []int         `yaml:"pins"`    // LED outputs, lowest level first
}

// ClipConfig names an audio file to load at start-up.
type ClipConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// SerialConfig contains the serial LED bar link configuration.
type SerialConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MQTTConfig contains the remote trigger configuration.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"` // Empty selects a random id
	Prefix   string `yaml:"prefix"`    // Topic prefix: <prefix>/play, <prefix>/control
}

// SpeakerConfig contains host audio output configuration.
type SpeakerConfig struct {
	Enabled bool `yaml:"enabled"`
	Buffer  int  `yaml:"buffer"` // Ring size in samples
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Empty logs text to stderr
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		DAC: DACConfig{
			Mode:       "callback",
			SampleRate: 8000,
			BitDepth:   8,
			Loop:       false,
			Channel:    0,
		},
		Visualizer: VisualizerConfig{
			Window:  50 * time.Millisecond,
			Overlap: 0.5,
			Levels:  6,
			Trigger: "start",
			Pins:    append([]int(nil), viz.DefaultPins...),
		},
		Serial: SerialConfig{
			Enabled:  false,
			Port:     "/dev/ttyACM0", // "COM3" on Windows
			BaudRate: 115200,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker:  "tcp://localhost:1883",
			Prefix:  "dacviz",
		},
		Speaker: SpeakerConfig{
			Enabled: true,
			Buffer:  800, // 100 ms at 8 kHz
		},
		Log: LogConfig{
			Level: "info",
		},
		LoopReport: 5 * time.Second,
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero values left by a partial file.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.DAC.Mode == "" {
		c.DAC.Mode = def.DAC.Mode
	}
	if c.DAC.SampleRate == 0 {
		c.DAC.SampleRate = def.DAC.SampleRate
	}
	if c.DAC.BitDepth == 0 {
		c.DAC.BitDepth = def.DAC.BitDepth
	}

	if c.Visualizer.Window == 0 {
		c.Visualizer.Window = def.Visualizer.Window
	}
	if c.Visualizer.Levels == 0 {
		c.Visualizer.Levels = def.Visualizer.Levels
	}
	if c.Visualizer.Trigger == "" {
		c.Visualizer.Trigger = def.Visualizer.Trigger
	}
	if len(c.Visualizer.Pins) == 0 {
		c.Visualizer.Pins = def.Visualizer.Pins
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.Prefix == "" {
		c.MQTT.Prefix = def.MQTT.Prefix
	}

	if c.Speaker.Buffer == 0 {
		c.Speaker.Buffer = def.Speaker.Buffer
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.LoopReport == 0 {
		c.LoopReport = def.LoopReport
	}
}

// Validate checks values that would make the emitter or the visualizer
// refuse to start. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := dac.ParseMode(c.DAC.Mode); err != nil {
		errs = append(errs, fmt.Errorf("dac.mode: %w", err))
	}
	if c.DAC.SampleRate <= 0 || c.DAC.SampleRate > 1_000_000 {
		errs = append(errs, fmt.Errorf("dac.sample_rate: %d out of range (1..1000000)", c.DAC.SampleRate))
	}
	if !pcm.Depth(c.DAC.BitDepth).Valid() {
		errs = append(errs, fmt.Errorf("dac.bit_depth: %w", pcm.ErrInvalidDepth))
	}

	vc, err := c.VizConfig()
	if err != nil {
		errs = append(errs, fmt.Errorf("visualizer: %w", err))
	} else if err := vc.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("visualizer: %w", err))
	} else if len(c.Visualizer.Pins) != c.Visualizer.Levels-1 {
		errs = append(errs, fmt.Errorf("visualizer.pins: %d pins for %d levels, want %d",
			len(c.Visualizer.Pins), c.Visualizer.Levels, c.Visualizer.Levels-1))
	}

	seen := make(map[string]bool, len(c.Clips))
	for i, clip := range c.Clips {
		if clip.Path == "" {
			errs = append(errs, fmt.Errorf("clips[%d]: empty path", i))
		}
		if seen[clip.Name] {
			errs = append(errs, fmt.Errorf("clips[%d]: duplicate name %q", i, clip.Name))
		}
		seen[clip.Name] = true
	}

	if !slices.Contains(logging.Levels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: %w: %q", logging.ErrLevel, c.Log.Level))
	}

	return errors.Join(errs...)
}

// Mode returns the parsed emitter mode.
func (c *Config) Mode() (dac.Mode, error) {
	return dac.ParseMode(c.DAC.Mode)
}

// VizConfig converts the visualizer section.
func (c *Config) VizConfig() (viz.Config, error) {
	trigger, err := viz.ParseTrigger(c.Visualizer.Trigger)
	if err != nil {
		return viz.Config{}, err
	}
	return viz.Config{
		Window:  c.Visualizer.Window,
		Overlap: c.Visualizer.Overlap,
		Levels:  c.Visualizer.Levels,
		Trigger: trigger,
	}, nil
}
