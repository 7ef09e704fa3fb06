package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/dacviz/pkg/viz"
)

var (
	colorBackground = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	colorGrid       = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorAxis       = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	colorText       = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorWave       = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	colorWindow     = color.RGBA{R: 255, G: 165, B: 0, A: 50}
	colorCursor     = color.RGBA{R: 255, G: 165, B: 0, A: 255} // Orange
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

func newRenderer(s *ScopeWidget) *scopeRenderer {
	grid := canvas.NewRectangle(colorBackground)
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	// Background fills entire widget
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		// Size changed, redraw with new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// plot is the drawing area inside the margins.
type plot struct {
	x, y, w, h float32
}

// column returns the x coordinate of sample i of n.
func (p plot) column(i, n int) float32 {
	if n <= 0 {
		return p.x
	}
	return p.x + float32(i)/float32(n)*p.w
}

// amplitude returns the y coordinate of a normalized amplitude.
func (p plot) amplitude(a float32) float32 {
	a = min(max(a, -1), 1)
	return p.y + p.h/2 - a*p.h/2
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	v := r.scope.snapshot()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}

	p := plot{x: 50, y: 24, w: size.Width - 70, h: size.Height - 54}
	if p.w <= 0 || p.h <= 0 {
		return
	}

	r.drawGrid(p, v)
	if v.length > 0 {
		r.drawWindow(p, v)
		r.drawEnvelope(p, v)
		r.drawCursor(p, v)
	}
	r.drawInfo(p, v)
}

// drawGrid draws amplitude and time grid lines with labels.
func (r *scopeRenderer) drawGrid(p plot, v view) {
	for _, a := range []float32{1, 0.5, 0, -0.5, -1} {
		y := p.amplitude(a)
		c := colorGrid
		if a == 0 {
			c = colorAxis
		}
		r.line(c, 1, p.x, y, p.x+p.w, y)
		r.text(fmt.Sprintf("%+.1f", a), 10, fyne.TextAlignTrailing, p.x-5, y-6)
	}

	const numVLines = 10
	total := v.total()
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/numVLines
		r.line(colorGrid, 1, x, p.y, x, p.y+p.h)
		if total > 0 {
			at := total * time.Duration(i) / numVLines
			r.text(formatTime(at), 10, fyne.TextAlignCenter, x-20, p.y+p.h+5)
		}
	}
}

// drawEnvelope draws one vertical min/max line per column.
func (r *scopeRenderer) drawEnvelope(p plot, v view) {
	n := len(v.envelope)
	for i, s := range v.envelope {
		x := p.column(i, n)
		r.line(colorWave, 1, x, p.amplitude(s.Hi), x, p.amplitude(s.Lo))
	}
}

// drawWindow shades the samples the last level was computed over.
func (r *scopeRenderer) drawWindow(p plot, v view) {
	start := max(v.window.Start, 0)
	end := min(v.window.End, v.length)
	if start >= end {
		return
	}
	x0 := p.column(start, v.length)
	x1 := p.column(end, v.length)

	rect := canvas.NewRectangle(colorWindow)
	rect.Move(fyne.NewPos(x0, p.y))
	rect.Resize(fyne.NewSize(x1-x0, p.h))
	r.objects = append(r.objects, rect)
}

// drawCursor draws the playback position.
func (r *scopeRenderer) drawCursor(p plot, v view) {
	pos := min(v.position, v.length)
	x := p.column(pos, v.length)
	r.line(colorCursor, 2, x, p.y, x, p.y+p.h)
}

// drawInfo prints the clip name, time and level.
func (r *scopeRenderer) drawInfo(p plot, v view) {
	if v.name == "" && v.length == 0 {
		r.text("no clip", 12, fyne.TextAlignLeading, p.x+10, 4)
		return
	}

	info := fmt.Sprintf("%s  %s / %s  level %d [%s]",
		v.name, formatTime(v.elapsed()), formatTime(v.total()),
		v.level, viz.Meter(v.level, v.levels))
	if v.loop {
		info += "  loop"
	}
	r.text(info, 12, fyne.TextAlignLeading, p.x+10, 4)
}

func (r *scopeRenderer) line(c color.Color, width, x1, y1, x2, y2 float32) {
	line := canvas.NewLine(c)
	line.Position1 = fyne.NewPos(x1, y1)
	line.Position2 = fyne.NewPos(x2, y2)
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) text(s string, size float32, align fyne.TextAlign, x, y float32) {
	text := canvas.NewText(s, colorText)
	text.TextSize = size
	text.Alignment = align
	text.Move(fyne.NewPos(x, y))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
