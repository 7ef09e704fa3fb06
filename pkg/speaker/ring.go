package speaker

import "sync"

// Silence is the 8-bit unsigned mid level played on underrun.
const Silence = 128

// Ring is a bounded byte FIFO between the emitter and the audio device.
// Writes never block: a full ring drops the sample. Reads never block: a
// short ring is padded with Silence.
type Ring struct {
	mu    sync.Mutex
	buf   []byte
	head  int
	count int

	overruns  uint64
	underruns uint64
}

// NewRing creates a ring holding up to size samples.
func NewRing(size int) *Ring {
	return &Ring{buf: make([]byte, max(size, 1))}
}

// Write queues v. It reports false, counting an overrun, when the ring is full.
func (r *Ring) Write(v byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == len(r.buf) {
		r.overruns++
		return false
	}
	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++
	return true
}

// Read fills p from the ring, padding with Silence. It always fills p.
func (r *Ring) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(p), r.count)
	for i := 0; i < n; i++ {
		p[i] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
	}
	r.count -= n

	if n < len(p) {
		r.underruns++
		for i := n; i < len(p); i++ {
			p[i] = Silence
		}
	}
	return len(p), nil
}

// Len returns the number of queued samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Reset drops all queued samples.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}

// Overruns returns the number of dropped writes.
func (r *Ring) Overruns() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overruns
}

// Underruns returns the number of reads that had to be padded.
func (r *Ring) Underruns() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.underruns
}
