// Package pcm holds mono PCM sample buffers as consumed by the DAC emitter
// and the level visualizer.
package pcm

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Depth is the width of one stored sample in bits.
type Depth int

const (
	// Depth8 is unsigned 8-bit PCM centred on 128.
	Depth8 Depth = 8
	// Depth16 is signed 16-bit PCM centred on 0.
	Depth16 Depth = 16
)

// Valid reports whether d is a supported bit depth.
func (d Depth) Valid() bool {
	return d == Depth8 || d == Depth16
}

// Bytes returns the number of bytes per stored sample.
func (d Depth) Bytes() int {
	return int(d) / 8
}

// Buffer is a read-only view over mono PCM samples.
// Exactly one of u8/s16 is populated, selected by depth.
// A Buffer never copies its input; callers must not modify the
// backing slice while the buffer is being played.
type Buffer struct {
	u8    []uint8
	s16   []int16
	rate  int
	depth Depth
}

// New8 wraps unsigned 8-bit samples.
func New8(samples []uint8, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrZeroSampleRate
	}
	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	return &Buffer{u8: samples, rate: sampleRate, depth: Depth8}, nil
}

// New16 wraps signed 16-bit samples.
func New16(samples []int16, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrZeroSampleRate
	}
	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	return &Buffer{s16: samples, rate: sampleRate, depth: Depth16}, nil
}

// FromBytes decodes raw sample bytes. 16-bit data is little-endian.
func FromBytes(raw []byte, depth Depth, sampleRate int) (*Buffer, error) {
	switch depth {
	case Depth8:
		return New8(raw, sampleRate)
	case Depth16:
		if len(raw)%2 != 0 {
			return nil, ErrOddLength
		}
		samples := make([]int16, len(raw)/2)
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
		}
		return New16(samples, sampleRate)
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b.depth == Depth16 {
		return len(b.s16)
	}
	return len(b.u8)
}

func (b *Buffer) Depth() Depth    { return b.depth }
func (b *Buffer) SampleRate() int { return b.rate }

// Duration returns the playback length at the buffer's sample rate.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Len()) * time.Second / time.Duration(b.rate)
}

// At returns the stored value at i: 0..255 for 8-bit, -32768..32767 for 16-bit.
func (b *Buffer) At(i int) int {
	if b.depth == Depth16 {
		return int(b.s16[i])
	}
	return int(b.u8[i])
}

// Uint8At returns the value an 8-bit DAC should output for sample i.
func (b *Buffer) Uint8At(i int) uint8 {
	if b.depth == Depth16 {
		return Convert16to8(b.s16[i])
	}
	return b.u8[i]
}

// Int16At returns the value a 16-bit (I2S / delta-sigma) output should
// receive for sample i.
func (b *Buffer) Int16At(i int) int16 {
	if b.depth == Depth16 {
		return b.s16[i]
	}
	return Convert8to16(b.u8[i])
}

// Extrema scans [start, end) and returns the smallest and largest stored
// values. The range must be non-empty and inside the buffer.
func (b *Buffer) Extrema(start, end int) (lo, hi int) {
	if b.depth == Depth16 {
		lo, hi = int(b.s16[start]), int(b.s16[start])
		for _, v := range b.s16[start+1 : end] {
			lo = min(lo, int(v))
			hi = max(hi, int(v))
		}
		return lo, hi
	}
	lo, hi = int(b.u8[start]), int(b.u8[start])
	for _, v := range b.u8[start+1 : end] {
		lo = min(lo, int(v))
		hi = max(hi, int(v))
	}
	return lo, hi
}

// Data8 returns the backing 8-bit samples, nil for 16-bit buffers.
func (b *Buffer) Data8() []uint8 { return b.u8 }

// Data16 returns the backing 16-bit samples, nil for 8-bit buffers.
func (b *Buffer) Data16() []int16 { return b.s16 }

// Convert16to8 maps a signed 16-bit sample onto the unsigned 8-bit DAC range.
// [-32768, 32767] lands exactly on [0, 255].
func Convert16to8(s int16) uint8 {
	return uint8((s >> 8) + 128)
}

// Convert8to16 maps an unsigned 8-bit sample onto the signed 16-bit range.
func Convert8to16(v uint8) int16 {
	return (int16(v) - 128) * 256
}
