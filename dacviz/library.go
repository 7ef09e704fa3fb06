package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/itohio/dacviz/pkg/clip"
	"github.com/itohio/dacviz/pkg/config"
	"github.com/itohio/dacviz/pkg/pcm"
)

// loadLibrary decodes the configured clips plus extra, if set, at the
// output rate and depth. An empty library gets a 440 Hz test tone.
// The returned name is the clip to play first, empty for the first one.
func loadLibrary(cfg *config.Config, extra string) (*clip.Library, string, error) {
	lib := clip.NewLibrary()
	rate := cfg.DAC.SampleRate
	depth := pcm.Depth(cfg.DAC.BitDepth)

	add := func(name, path string) (string, error) {
		if name == "" {
			name = clipName(path)
		}
		buf, err := clip.Load(path, rate, depth)
		if err != nil {
			return "", fmt.Errorf("loading clip %q: %w", name, err)
		}
		return name, lib.Add(name, buf)
	}

	for _, c := range cfg.Clips {
		if _, err := add(c.Name, c.Path); err != nil {
			return nil, "", err
		}
	}

	first := ""
	if extra != "" {
		name, err := add("", extra)
		if err != nil {
			return nil, "", err
		}
		first = name
	}

	if lib.Len() == 0 {
		buf, err := clip.Quantize(clip.Tone(440, 0.8, 1, rate), rate, depth)
		if err != nil {
			return nil, "", fmt.Errorf("generating test tone: %w", err)
		}
		if err := lib.Add("tone", buf); err != nil {
			return nil, "", err
		}
	}

	return lib, first, nil
}

// clipName derives a clip name from a file name: "sounds/startup.8.8.dat"
// becomes "startup".
func clipName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
