package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/dacviz/pkg/config"
	"github.com/itohio/dacviz/pkg/remote"
)

func TestClipName(t *testing.T) {
	assert.Equal(t, "startup", clipName("sounds/startup.8.8.dat"))
	assert.Equal(t, "beep", clipName("/tmp/beep.wav"))
	assert.Equal(t, "noext", clipName("noext"))
	assert.Equal(t, ".hidden", clipName(".hidden"))
}

func TestLoadLibrary_ToneFallback(t *testing.T) {
	cfg := config.Default()

	lib, first, err := loadLibrary(cfg, "")
	require.NoError(t, err)
	assert.Empty(t, first)
	assert.Equal(t, []string{"tone"}, lib.Names())

	buf, ok := lib.Get("tone")
	require.True(t, ok)
	assert.Equal(t, 8000, buf.SampleRate())
	assert.Equal(t, 8000, buf.Len())
}

func TestLoadLibrary_ConfiguredAndExtra(t *testing.T) {
	dir := t.TempDir()
	dat := filepath.Join(dir, "click.8.8.dat")
	require.NoError(t, os.WriteFile(dat, []byte("0x80, 0xFF, 0x00, 0x80 // click\n"), 0644))
	raw := filepath.Join(dir, "hum.raw")
	require.NoError(t, os.WriteFile(raw, []byte{128, 129, 130, 131}, 0644))

	cfg := config.Default()
	cfg.Clips = []config.ClipConfig{{Name: "click", Path: dat}}

	lib, first, err := loadLibrary(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, "hum", first)
	assert.Equal(t, []string{"click", "hum"}, lib.Names())

	buf, ok := lib.Get("click")
	require.True(t, ok)
	assert.Equal(t, []uint8{0x80, 0xFF, 0x00, 0x80}, buf.Data8())
}

func TestLoadLibrary_MissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Clips = []config.ClipConfig{{Name: "gone", Path: filepath.Join(t.TempDir(), "gone.wav")}}

	_, _, err := loadLibrary(cfg, "")
	assert.Error(t, err)
}

func TestMeterPrinter(t *testing.T) {
	var out bytes.Buffer
	show := meterPrinter(&out, config.Default().Visualizer.Levels)

	show(2)
	show(2)
	show(0)

	assert.Equal(t, "|    <<>>    |\n|            |\n", out.String())
}

func TestInitialCommand(t *testing.T) {
	assert.Equal(t, remote.Command{Kind: remote.KindPlay, Name: "hum"}, initialCommand("hum"))
	assert.Equal(t, remote.Command{Kind: remote.KindIndex}, initialCommand(""))
}

func TestThrottle(t *testing.T) {
	th := throttle{interval: 10 * time.Millisecond}
	now := time.Now()

	assert.True(t, th.Allow(now, false))
	assert.False(t, th.Allow(now.Add(5*time.Millisecond), false))
	assert.True(t, th.Allow(now.Add(6*time.Millisecond), true))
	assert.True(t, th.Allow(now.Add(20*time.Millisecond), false))
}

func TestForward(t *testing.T) {
	in := make(chan remote.Command, 2)
	out := make(chan remote.Command, 2)
	in <- remote.Command{Kind: remote.KindNext}
	close(in)

	forward(context.Background(), in, out)
	assert.Equal(t, remote.Command{Kind: remote.KindNext}, <-out)
}

func TestEngine_FlushesAudioOnNewClip(t *testing.T) {
	cfg := config.Default()
	cfg.Speaker.Enabled = false
	cfg.DAC.Mode = "polled"
	lib, _, err := loadLibrary(cfg, "")
	require.NoError(t, err)

	e, err := newEngine(cfg, lib, nil)
	require.NoError(t, err)
	defer e.close()

	flushes := 0
	e.flush = func() { flushes++ }
	var reports []string
	e.OnReport = func(suffix, payload string) { reports = append(reports, suffix+"="+payload) }

	require.NoError(t, e.player.Play("tone"))
	assert.Equal(t, 1, flushes)

	e.Publish("clips", "tone")
	assert.Equal(t, 1, flushes)
	assert.Equal(t, []string{"playing=tone", "clips=tone"}, reports)
}
