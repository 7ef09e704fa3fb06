// Package speaker plays emitted samples on the host sound device.
package speaker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/itohio/dacviz/pkg/board"
	"github.com/itohio/dacviz/pkg/pcm"
)

var (
	_ board.DAC     = (*Speaker)(nil)
	_ board.WideDAC = (*Speaker)(nil)
)

// ErrZeroRate is returned for a non-positive sample rate.
var ErrZeroRate = errors.New("speaker sample rate must be positive")

// DefaultBuffer is the ring size used when none is given: 100 ms at 8 kHz.
const DefaultBuffer = 800

// Speaker is an 8-bit mono DAC backed by the host audio device. Samples are
// queued in a Ring the device drains at the configured rate. Only one
// Speaker can exist per process.
type Speaker struct {
	rate   int
	ring   *Ring
	ctx    *oto.Context
	player *oto.Player

	mu     sync.Mutex
	closed bool

	log *slog.Logger
}

// New opens the audio device at rate with a ring of bufferSamples.
func New(rate int, bufferSamples int) (*Speaker, error) {
	if rate <= 0 {
		return nil, ErrZeroRate
	}
	if bufferSamples <= 0 {
		bufferSamples = DefaultBuffer
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   time.Duration(bufferSamples) * time.Second / time.Duration(rate),
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	s := &Speaker{
		rate: rate,
		ring: NewRing(bufferSamples),
		ctx:  ctx,
		log:  slog.Default().With("component", "speaker"),
	}
	s.player = ctx.NewPlayer(s.ring)
	s.player.SetBufferSize(bufferSamples)
	s.player.Play()

	s.log.Info("audio device open", "rate", rate, "buffer", bufferSamples)
	return s, nil
}

// WriteSample queues an 8-bit sample. The channel is ignored.
func (s *Speaker) WriteSample(_ int, value uint8) {
	s.ring.Write(value)
}

// ConsumeSample queues a 16-bit sample, refusing it while the ring is full.
func (s *Speaker) ConsumeSample(value int16) bool {
	return s.ring.Write(pcm.Convert16to8(value))
}

// SampleRate returns the device rate.
func (s *Speaker) SampleRate() int {
	return s.rate
}

// Stats returns the dropped-write and padded-read counters.
func (s *Speaker) Stats() (overruns, underruns uint64) {
	return s.ring.Overruns(), s.ring.Underruns()
}

// Flush drops queued samples, e.g. when switching clips.
func (s *Speaker) Flush() {
	s.ring.Reset()
}

// Close stops playback. The oto context stays alive for the process.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	over, under := s.Stats()
	s.log.Info("audio device closed", "overruns", over, "underruns", under)

	if err := s.player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	return nil
}
