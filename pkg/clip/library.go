package clip

import (
	"fmt"
	"strings"
	"sync"

	"github.com/itohio/dacviz/pkg/pcm"
)

// Library is an ordered set of named PCM buffers with a selection cursor.
// Next walks the clips in insertion order and wraps around.
type Library struct {
	mu    sync.RWMutex
	names []string
	bufs  map[string]*pcm.Buffer
	cur   int
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{bufs: make(map[string]*pcm.Buffer), cur: -1}
}

// Add appends a clip, or replaces the buffer of an existing name in place.
func (l *Library) Add(name string, buf *pcm.Buffer) error {
	if buf == nil {
		return fmt.Errorf("%w: %q has no buffer", ErrNoSamples, name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.bufs[name]; !ok {
		l.names = append(l.names, name)
	}
	l.bufs[name] = buf
	return nil
}

// Get returns the buffer named name.
func (l *Library) Get(name string) (*pcm.Buffer, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	buf, ok := l.bufs[name]
	return buf, ok
}

// At returns the i-th clip.
func (l *Library) At(i int) (string, *pcm.Buffer, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.names) {
		return "", nil, false
	}
	name := l.names[i]
	return name, l.bufs[name], true
}

// Names lists clip names in order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.names...)
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}

// Select moves the cursor to name. Matching ignores case.
func (l *Library) Select(name string) (*pcm.Buffer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, n := range l.names {
		if strings.EqualFold(n, name) {
			l.cur = i
			return l.bufs[n], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownClip, name)
}

// SelectIndex moves the cursor to the i-th clip.
func (l *Library) SelectIndex(i int) (string, *pcm.Buffer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.names) {
		return "", nil, fmt.Errorf("%w: index %d of %d", ErrUnknownClip, i, len(l.names))
	}
	l.cur = i
	name := l.names[i]
	return name, l.bufs[name], nil
}

// Next advances the cursor and returns the clip under it. The first call
// returns the first clip.
func (l *Library) Next() (string, *pcm.Buffer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.names) == 0 {
		return "", nil, ErrEmptyLibrary
	}
	l.cur = (l.cur + 1) % len(l.names)
	name := l.names[l.cur]
	return name, l.bufs[name], nil
}

// Current returns the selected clip, if any.
func (l *Library) Current() (string, *pcm.Buffer, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.cur < 0 || l.cur >= len(l.names) {
		return "", nil, false
	}
	name := l.names[l.cur]
	return name, l.bufs[name], true
}
