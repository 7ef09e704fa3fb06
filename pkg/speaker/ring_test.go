package speaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_WriteRead(t *testing.T) {
	r := NewRing(4)
	assert.Equal(t, 4, r.Cap())

	for _, v := range []byte{1, 2, 3, 4} {
		assert.True(t, r.Write(v))
	}
	assert.False(t, r.Write(5))
	assert.Equal(t, uint64(1), r.Overruns())
	assert.Equal(t, 4, r.Len())

	p := make([]byte, 2)
	n, err := r.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{1, 2}, p)

	// Wraps around the end of the backing array.
	assert.True(t, r.Write(6))
	assert.True(t, r.Write(7))

	p = make([]byte, 6)
	n, _ = r.Read(p)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte{3, 4, 6, 7, Silence, Silence}, p)
	assert.Equal(t, uint64(1), r.Underruns())
	assert.Equal(t, 0, r.Len())
}

func TestRing_UnderrunPlaysSilence(t *testing.T) {
	r := NewRing(8)
	p := []byte{9, 9, 9}
	n, err := r.Read(p)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{Silence, Silence, Silence}, p)
	assert.Equal(t, uint64(1), r.Underruns())
}

func TestRing_Reset(t *testing.T) {
	r := NewRing(0)
	assert.Equal(t, 1, r.Cap())
	assert.True(t, r.Write(1))
	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.Write(2))
}
