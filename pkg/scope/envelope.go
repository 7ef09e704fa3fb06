package scope

import (
	"github.com/itohio/dacviz/pkg/pcm"
	"github.com/itohio/dacviz/pkg/viz"
)

// Span is the sample range of one display column, normalized to [-1, 1]
// around the buffer's DC offset.
type Span struct {
	Lo, Hi float32
}

// Envelope reduces buf to at most columns min/max spans so that short
// peaks survive downsampling.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
func Envelope(dst []Span, buf *pcm.Buffer, columns int) []Span {
	if buf == nil || buf.Len() == 0 || columns <= 0 {
		return dst[:0]
	}

	n := min(columns, buf.Len())
	if cap(dst) >= n {
		dst = dst[:0]
	} else {
		dst = make([]Span, 0, n)
	}

	scale := viz.NewScale(buf.Depth(), 1)
	full := float32(scale.FullScale)
	total := buf.Len()
	for i := range n {
		start := i * total / n
		end := (i + 1) * total / n
		lo, hi := buf.Extrema(start, end)
		dst = append(dst, Span{
			Lo: float32(lo-scale.DCOffset) / full,
			Hi: float32(hi-scale.DCOffset) / full,
		})
	}
	return dst
}
