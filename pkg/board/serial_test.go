//go:build !tinygo

package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSerial(t *testing.T) {
	d := NewSerial("/dev/null", 0, []int{16, 17, 18})
	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.False(t, d.IsConnected())
	assert.NotNil(t, d.Presses())
	assert.NoError(t, d.Close())
}

func TestSerial_MaskTrackingWhileDisconnected(t *testing.T) {
	d := NewSerial("/dev/null", 9600, []int{16, 17, 18, 19, 21})

	d.WriteDigital(17, true)
	assert.Equal(t, uint32(0b10), d.mask)

	d.WriteDigital(99, true)
	assert.Equal(t, uint32(0b10), d.mask)

	d.WriteMask([]int{16, 17, 18}, LevelMask(3))
	assert.Equal(t, uint32(0b111), d.mask)

	d.WriteDigital(16, false)
	assert.Equal(t, uint32(0b110), d.mask)
	assert.Equal(t, 0, d.Failures())
}

func TestSerial_ReadEvents(t *testing.T) {
	d := NewSerial("/dev/null", 0, nil)
	d.connected = true

	d.readEvents(strings.NewReader("# hello\nB\n\nnoise\nB\r\n"))

	assert.Len(t, d.presses, 2)
}

func TestSerial_ReadEventsAfterClose(t *testing.T) {
	d := NewSerial("/dev/null", 0, nil)
	d.connected = false

	d.readEvents(strings.NewReader("B\nB\n"))

	assert.Len(t, d.presses, 0)
}
