package viz

import (
	"github.com/chewxy/math32"

	"github.com/itohio/dacviz/pkg/pcm"
)

// Scale maps sample amplitude to levels for one bit depth.
type Scale struct {
	FullScale int
	DCOffset  int
	// Quant is the amplitude span of one level.
	Quant int
}

// NewScale returns the scale for depth split into levels.
// 8-bit samples are centred on 128, 16-bit samples on 0.
func NewScale(depth pcm.Depth, levels int) Scale {
	s := Scale{FullScale: 128, DCOffset: 128}
	if depth == pcm.Depth16 {
		s = Scale{FullScale: 32768, DCOffset: 0}
	}
	s.Quant = int(math32.Ceil(float32(s.FullScale) / float32(max(levels, 1))))
	return s
}

// LevelOf returns the quantized peak amplitude of buf over [start, end),
// clamped to the buffer. An empty range reads 0.
func LevelOf(buf *pcm.Buffer, start, end int, s Scale, levels int) int {
	start = max(start, 0)
	end = min(end, buf.Len())
	if start >= end || s.Quant <= 0 {
		return 0
	}

	lo, hi := buf.Extrema(start, end)
	lo -= s.DCOffset
	hi -= s.DCOffset

	peak := max(hi, -lo)
	return min(max(peak/s.Quant, 0), levels-1)
}
