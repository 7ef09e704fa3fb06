// Package ledbar is a Fyne widget that mimics the LED bar of the board.
package ledbar

import (
	"image/color"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/dacviz/pkg/board"
)

var (
	_ board.GPIO       = (*LEDBar)(nil)
	_ board.BankWriter = (*LEDBar)(nil)
)

var (
	colorOff    = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorGreen  = color.RGBA{R: 40, G: 220, B: 60, A: 255}
	colorYellow = color.RGBA{R: 240, G: 200, B: 0, A: 255}
	colorRed    = color.RGBA{R: 230, G: 40, B: 30, A: 255}
	colorLabel  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

// LEDBar displays one LED per pin, lowest level on the left.
// Pin writes may come from any goroutine.
type LEDBar struct {
	widget.BaseWidget

	mu    sync.RWMutex
	pins  []int
	index map[int]int
	lit   []bool

	// refresh schedules a redraw on the Fyne main thread.
	refresh func()
}

// New creates a bar for pins.
func New(pins []int) *LEDBar {
	b := &LEDBar{
		pins:  append([]int(nil), pins...),
		index: make(map[int]int, len(pins)),
		lit:   make([]bool, len(pins)),
	}
	for i, p := range pins {
		b.index[p] = i
	}
	b.refresh = func() { fyne.Do(b.Refresh) }
	b.ExtendBaseWidget(b)
	return b
}

// WriteDigital switches the LED of pin. Unknown pins are ignored.
func (b *LEDBar) WriteDigital(pin int, high bool) {
	b.mu.Lock()
	i, ok := b.index[pin]
	changed := ok && b.lit[i] != high
	if changed {
		b.lit[i] = high
	}
	b.mu.Unlock()

	if changed {
		b.refresh()
	}
}

// WriteMask sets the LEDs of pins from mask in one redraw.
func (b *LEDBar) WriteMask(pins []int, mask uint32) {
	b.mu.Lock()
	changed := false
	for bit, pin := range pins {
		i, ok := b.index[pin]
		if !ok {
			continue
		}
		high := mask&(1<<bit) != 0
		if b.lit[i] != high {
			b.lit[i] = high
			changed = true
		}
	}
	b.mu.Unlock()

	if changed {
		b.refresh()
	}
}

// Lit returns a copy of the LED states.
func (b *LEDBar) Lit() []bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]bool(nil), b.lit...)
}

// Level counts lit LEDs from the left up to the first dark one.
func (b *LEDBar) Level() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, on := range b.lit {
		if !on {
			break
		}
		n++
	}
	return n
}

// ledColor picks green for the lower 60% of the bar, yellow up to the
// last LED, red for the last.
func ledColor(i, n int) color.Color {
	switch {
	case i == n-1 && n > 1:
		return colorRed
	case i*5 >= n*3:
		return colorYellow
	default:
		return colorGreen
	}
}

// CreateRenderer creates the widget renderer.
func (b *LEDBar) CreateRenderer() fyne.WidgetRenderer {
	b.mu.RLock()
	n := len(b.pins)
	pins := append([]int(nil), b.pins...)
	b.mu.RUnlock()

	r := &ledRenderer{
		bar:        b,
		background: canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}),
		leds:       make([]*canvas.Circle, n),
		labels:     make([]*canvas.Text, n),
	}
	r.objects = append(r.objects, r.background)
	for i := range n {
		r.leds[i] = canvas.NewCircle(colorOff)
		r.leds[i].StrokeColor = colorLabel
		r.leds[i].StrokeWidth = 1
		r.labels[i] = canvas.NewText(strconv.Itoa(pins[i]), colorLabel)
		r.labels[i].TextSize = 10
		r.labels[i].Alignment = fyne.TextAlignCenter
		r.objects = append(r.objects, r.leds[i], r.labels[i])
	}
	return r
}

type ledRenderer struct {
	bar *LEDBar

	background *canvas.Rectangle
	leds       []*canvas.Circle
	labels     []*canvas.Text

	objects []fyne.CanvasObject
}

const (
	ledSize    = float32(28)
	ledSpacing = float32(12)
	labelSpace = float32(16)
)

func (r *ledRenderer) MinSize() fyne.Size {
	n := float32(len(r.leds))
	return fyne.NewSize(n*ledSize+(n+1)*ledSpacing, ledSize+labelSpace+2*ledSpacing)
}

func (r *ledRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	n := float32(len(r.leds))
	used := n*ledSize + (n-1)*ledSpacing
	x := (size.Width - used) / 2
	y := (size.Height - ledSize - labelSpace) / 2
	for i, led := range r.leds {
		led.Resize(fyne.NewSize(ledSize, ledSize))
		led.Move(fyne.NewPos(x, y))
		r.labels[i].Resize(fyne.NewSize(ledSize, labelSpace))
		r.labels[i].Move(fyne.NewPos(x, y+ledSize+2))
		x += ledSize + ledSpacing
	}
}

func (r *ledRenderer) Refresh() {
	lit := r.bar.Lit()
	for i, led := range r.leds {
		if i < len(lit) && lit[i] {
			led.FillColor = ledColor(i, len(r.leds))
		} else {
			led.FillColor = colorOff
		}
		led.Refresh()
	}
}

func (r *ledRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *ledRenderer) Destroy() {}
