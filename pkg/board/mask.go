package board

import (
	"fmt"
	"strings"
)

// MaxPins is the widest LED bar a mask line can describe.
const MaxPins = 32

// EncodeMask renders the first n bits of mask as an LED bar line.
// Format: 'L' followed by one '0'/'1' per LED, newline terminated.
// Example: L11000\n
func EncodeMask(mask uint32, n int) string {
	n = min(max(n, 0), MaxPins)

	var b strings.Builder
	b.Grow(n + 2)
	b.WriteByte('L')
	for i := 0; i < n; i++ {
		if mask&(1<<i) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// ParseMask parses a line produced by EncodeMask. Surrounding whitespace
// is ignored.
func ParseMask(line string) (mask uint32, n int, err error) {
	line = strings.TrimSpace(line)
	if len(line) == 0 || line[0] != 'L' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMask, line)
	}

	bits := line[1:]
	if len(bits) > MaxPins {
		return 0, 0, fmt.Errorf("%w: %d leds (max %d)", ErrInvalidMask, len(bits), MaxPins)
	}
	for i, c := range bits {
		switch c {
		case '1':
			mask |= 1 << i
		case '0':
		default:
			return 0, 0, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidMask, c, i+1)
		}
	}
	return mask, len(bits), nil
}

// LevelMask returns a mask with the lowest level bits set.
func LevelMask(level int) uint32 {
	if level <= 0 {
		return 0
	}
	if level >= MaxPins {
		return ^uint32(0)
	}
	return 1<<level - 1
}
