package clip

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itohio/dacviz/pkg/pcm"
)

const (
	// DefaultRate is the rate assumed for .dat and .raw data without a
	// rate in the file name.
	DefaultRate = 8000
	// DefaultDepth is the bit depth assumed likewise.
	DefaultDepth = pcm.Depth8
)

// DatDecoder reads sample data written as a C array initializer body, as
// included into firmware sources:
//
//	// viola, 44.1 kHz, 16 bit
//	0x0000, 0xff80, 127, -12,
//
// A file name of the form name.<rate>.<bits>.dat (viola.44.16.dat) sets the
// rate and depth; otherwise Rate and Depth apply, falling back to 8 kHz
// unsigned 8-bit.
type DatDecoder struct {
	Rate  int
	Depth pcm.Depth
}

func (d DatDecoder) Decode(name string, r io.ReadSeeker) (*Clip, error) {
	rate, depth := nameHint(name, d.Rate, d.Depth)

	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sample data: %w", err)
	}

	values, err := ParseDat(string(text))
	if err != nil {
		return nil, err
	}

	ints := make([]int, len(values))
	for i, v := range values {
		switch depth {
		case pcm.Depth8:
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: value %d at %d out of 8-bit range", ErrDatSyntax, v, i)
			}
			ints[i] = int(v)
		default:
			if v < -32768 || v > 65535 {
				return nil, fmt.Errorf("%w: value %d at %d out of 16-bit range", ErrDatSyntax, v, i)
			}
			// Unsigned hex literals carry the two's complement bit pattern.
			ints[i] = int(int16(uint16(v)))
		}
	}

	samples, err := fromInts(ints, int(depth), 1)
	if err != nil {
		return nil, err
	}
	return &Clip{Samples: samples, SampleRate: rate, SourceDepth: int(depth)}, nil
}

// ParseDat extracts the integer literals of a C initializer list. Line and
// block comments are skipped; an enclosing "= { ... };" is optional.
func ParseDat(text string) ([]int64, error) {
	text = stripComments(text)
	if i := strings.IndexByte(text, '{'); i >= 0 {
		text = text[i+1:]
		if j := strings.LastIndexByte(text, '}'); j >= 0 {
			text = text[:j]
		}
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})

	values := make([]int64, 0, len(fields))
	for _, f := range fields {
		lit := strings.TrimRight(f, "uUlL")
		v, err := strconv.ParseInt(lit, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrDatSyntax, f)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, ErrNoSamples
	}
	return values, nil
}

func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		switch {
		case strings.HasPrefix(text[i:], "//"):
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				return b.String()
			}
			i += j - 1
		case strings.HasPrefix(text[i:], "/*"):
			j := strings.Index(text[i+2:], "*/")
			if j < 0 {
				return b.String()
			}
			i += j + 3
			b.WriteByte(' ')
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

// RawDecoder reads headerless mono PCM: unsigned 8-bit or little-endian
// signed 16-bit. The file name hint of DatDecoder applies.
type RawDecoder struct {
	Rate  int
	Depth pcm.Depth
}

func (d RawDecoder) Decode(name string, r io.ReadSeeker) (*Clip, error) {
	rate, depth := nameHint(name, d.Rate, d.Depth)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading raw pcm: %w", err)
	}

	buf, err := pcm.FromBytes(data, depth, rate)
	if err != nil {
		return nil, err
	}

	ints := make([]int, buf.Len())
	for i := range ints {
		ints[i] = buf.At(i)
	}
	samples, err := fromInts(ints, int(depth), 1)
	if err != nil {
		return nil, err
	}
	return &Clip{Samples: samples, SampleRate: rate, SourceDepth: int(depth)}, nil
}

// rateCodes expands the short rate tags used in clip file names.
var rateCodes = map[int]int{
	8:  8000,
	11: 11025,
	16: 16000,
	22: 22050,
	24: 24000,
	32: 32000,
	44: 44100,
	48: 48000,
}

// nameHint reads name.<rate>.<bits>.ext. Values missing from the name come
// from rate and depth, then from the package defaults.
func nameHint(name string, rate int, depth pcm.Depth) (int, pcm.Depth) {
	if rate <= 0 {
		rate = DefaultRate
	}
	if !depth.Valid() {
		depth = DefaultDepth
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return rate, depth
	}

	code, err1 := strconv.Atoi(parts[len(parts)-2])
	bits, err2 := strconv.Atoi(parts[len(parts)-1])
	if err1 != nil || err2 != nil || !pcm.Depth(bits).Valid() || code <= 0 {
		return rate, depth
	}

	switch hz, ok := rateCodes[code]; {
	case ok:
		rate = hz
	case code < 1000:
		rate = code * 1000
	default:
		rate = code
	}
	return rate, pcm.Depth(bits)
}
