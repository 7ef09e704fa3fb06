// Package clip loads audio clips from disk and prepares them as PCM buffers
// for the DAC emitter.
package clip

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/itohio/dacviz/pkg/pcm"
)

// Clip is decoded mono audio in [-1, 1] at its source sample rate.
type Clip struct {
	Samples    []float32
	SampleRate int
	// SourceDepth is the bit depth of the encoded data, 0 when unknown.
	SourceDepth int
}

// Decoder turns an encoded stream into a Clip. name is the file name the
// stream came from; formats that encode parameters in the name use it.
type Decoder interface {
	Decode(name string, r io.ReadSeeker) (*Clip, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(name string, r io.ReadSeeker) (*Clip, error)

func (f DecoderFunc) Decode(name string, r io.ReadSeeker) (*Clip, error) {
	return f(name, r)
}

// Registry maps file extensions (without the dot, lower case) to decoders.
type Registry struct {
	codecs map[string]Decoder
	mtx    sync.Mutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// DefaultRegistry knows wav, aiff, mp3, ogg, dat and raw.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register("wav", WavDecoder{})
	r.Register("aiff", AiffDecoder{})
	r.Register("aif", AiffDecoder{})
	r.Register("mp3", Mp3Decoder{})
	r.Register("ogg", VorbisDecoder{})
	r.Register("dat", DatDecoder{})
	r.Register("raw", RawDecoder{})
	return r
}()

func (r *Registry) Register(ext string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.codecs[normExt(ext)] = d
}

func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	d, ok := r.codecs[normExt(ext)]
	return d, ok
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Decode opens path and decodes it with the decoder for its extension.
func (r *Registry) Decode(path string) (*Clip, error) {
	d, ok := r.Get(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening clip: %w", err)
	}
	defer f.Close()

	c, err := d.Decode(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(c.Samples) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSamples)
	}
	return c, nil
}

// Decode decodes path with DefaultRegistry.
func Decode(path string) (*Clip, error) {
	return DefaultRegistry.Decode(path)
}

// Load decodes path and converts it to a PCM buffer at rate and depth.
// A rate of 0 keeps the source rate.
func Load(path string, rate int, depth pcm.Depth) (*pcm.Buffer, error) {
	c, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return c.Buffer(rate, depth)
}

// Buffer resamples the clip to rate (0 keeps the source rate) and
// quantizes it to depth.
func (c *Clip) Buffer(rate int, depth pcm.Depth) (*pcm.Buffer, error) {
	if rate <= 0 {
		rate = c.SampleRate
	}
	samples := c.Samples
	if rate != c.SampleRate {
		samples = Resample(samples, c.SampleRate, rate)
	}
	return Quantize(samples, rate, depth)
}

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
