package clip

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/itohio/dacviz/pkg/pcm"
)

// Quantize converts samples in [-1, 1] to a PCM buffer. Values outside the
// range are clamped; 8-bit output is centred on 128.
func Quantize(samples []float32, rate int, depth pcm.Depth) (*pcm.Buffer, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	switch depth {
	case pcm.Depth8:
		out := make([]uint8, len(samples))
		for i, x := range samples {
			v := math32.Round(x*128) + 128
			out[i] = uint8(min(max(v, 0), 255))
		}
		return pcm.New8(out, rate)
	case pcm.Depth16:
		out := make([]int16, len(samples))
		for i, x := range samples {
			v := math32.Round(x * 32768)
			out[i] = int16(min(max(v, math.MinInt16), math.MaxInt16))
		}
		return pcm.New16(out, rate)
	default:
		return nil, fmt.Errorf("%w: got %d", pcm.ErrInvalidDepth, depth)
	}
}

// Resample converts samples from one rate to another with Catmull-Rom
// cubic interpolation. Edges repeat the first and last sample.
func Resample(samples []float32, from, to int) []float32 {
	if len(samples) == 0 || from <= 0 || to <= 0 {
		return nil
	}
	if from == to {
		return append([]float32(nil), samples...)
	}

	ratio := float64(from) / float64(to)
	n := max(int(float64(len(samples))/ratio), 1)
	last := len(samples) - 1

	at := func(i int) float32 {
		return samples[min(max(i, 0), last)]
	}

	out := make([]float32, n)
	for k := range out {
		pos := float64(k) * ratio
		i := int(pos)
		x := float32(pos - float64(i))
		out[k] = cubic(at(i-1), at(i), at(i+1), at(i+2), x)
	}
	return out
}

// cubic is the Catmull-Rom spline through y1 and y2 at x in [0, 1).
func cubic(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// Tone generates a sine burst of freq Hz with a short linear fade at both
// ends, at the given amplitude in (0, 1].
func Tone(freq float32, amplitude float32, duration float32, rate int) []float32 {
	n := int(duration * float32(rate))
	if n <= 0 || rate <= 0 {
		return nil
	}

	fade := max(n/20, 1)
	out := make([]float32, n)
	for i := range out {
		env := float32(1)
		if i < fade {
			env = float32(i) / float32(fade)
		} else if n-1-i < fade {
			env = float32(n-1-i) / float32(fade)
		}
		out[i] = amplitude * env * math32.Sin(2*math32.Pi*freq*float32(i)/float32(rate))
	}
	return out
}
