package clip

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// WavDecoder reads PCM wav files of 8, 16, 24 or 32 bits.
type WavDecoder struct{}

func (WavDecoder) Decode(_ string, r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWav
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading pcm: %w", err)
	}

	depth := int(dec.BitDepth)
	samples, err := fromInts(buf.Data, depth, int(dec.NumChans))
	if err != nil {
		return nil, err
	}
	return &Clip{Samples: samples, SampleRate: int(dec.SampleRate), SourceDepth: depth}, nil
}

// AiffDecoder reads AIFF files.
type AiffDecoder struct{}

func (AiffDecoder) Decode(_ string, r io.ReadSeeker) (*Clip, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiff
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, ErrNotAiff
	}

	// AIFF stores 8-bit data signed; only the signed widths are accepted.
	depth := int(dec.BitDepth)
	if depth == 8 {
		return nil, fmt.Errorf("%w: 8-bit aiff", ErrBitDepth)
	}

	buf := &goaudio.IntBuffer{Data: make([]int, 4096), Format: format}
	var data []int
	for {
		n, err := dec.PCMBuffer(buf)
		data = append(data, buf.Data[:n]...)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading pcm: %w", err)
		}
		if err == io.EOF || n == 0 {
			break
		}
	}

	samples, err := fromInts(data, depth, format.NumChannels)
	if err != nil {
		return nil, err
	}
	return &Clip{Samples: samples, SampleRate: format.SampleRate, SourceDepth: depth}, nil
}

// Mp3Decoder reads MPEG-1/2 layer III. go-mp3 always yields 16-bit stereo.
type Mp3Decoder struct{}

func (Mp3Decoder) Decode(_ string, r io.ReadSeeker) (*Clip, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading mp3 frames: %w", err)
	}

	ints := make([]int, len(raw)/2)
	for i := range ints {
		ints[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}

	samples, err := fromInts(ints, 16, 2)
	if err != nil {
		return nil, err
	}
	return &Clip{Samples: samples, SampleRate: dec.SampleRate(), SourceDepth: 16}, nil
}

// VorbisDecoder reads Ogg Vorbis.
type VorbisDecoder struct{}

func (VorbisDecoder) Decode(_ string, r io.ReadSeeker) (*Clip, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	samples, err := Downmix(data, format.Channels)
	if err != nil {
		return nil, err
	}
	return &Clip{Samples: samples, SampleRate: format.SampleRate}, nil
}

// fromInts normalizes interleaved integer PCM to mono float32. 8-bit data
// is unsigned, wider data signed.
func fromInts(data []int, depth, channels int) ([]float32, error) {
	var scale float32
	offset := 0
	switch depth {
	case 8:
		scale, offset = 128, 128
	case 16:
		scale = 32768
	case 24:
		scale = 8388608
	case 32:
		scale = 2147483648
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, depth)
	}

	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v-offset) / scale
	}
	return Downmix(out, channels)
}

// Downmix averages interleaved channels into one. A trailing partial frame
// is dropped.
func Downmix(data []float32, channels int) ([]float32, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadChannels, channels)
	}
	if channels == 1 {
		return data, nil
	}

	frames := len(data) / channels
	out := make([]float32, frames)
	for f := range frames {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += data[f*channels+c]
		}
		out[f] = sum / float32(channels)
	}
	return out, nil
}
