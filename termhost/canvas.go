package termhost

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/grove"
)

// Glyphs used for filled and outlined shapes.
const (
	glyphFill   = '█'
	glyphStroke = '▒'
	glyphDot    = '•'
)

type cell struct{ x, y int }

// Canvas implements grove.Canvas on a tcell screen. Transformed coordinates
// are divided by the cell size to pick terminal cells; a shape covers the
// cells whose centers fall inside it.
type Canvas struct {
	grove.TransformStack

	screen tcell.Screen
	cw, ch float64

	// capture collects covered cells instead of drawing while a mask is
	// being drawn.
	capture map[cell]bool
	// clip limits drawing while masked content is drawn.
	clip     map[cell]bool
	clipMode grove.MaskMode
}

// NewCanvas returns a canvas drawing onto screen with cells of cw×ch world
// units.
func NewCanvas(screen tcell.Screen, cw, ch float64) *Canvas {
	return &Canvas{screen: screen, cw: cw, ch: ch}
}

// PushTransform implements grove.Canvas.
func (c *Canvas) PushTransform(m grove.Affine) { c.Push(m) }

// PopTransform implements grove.Canvas.
func (c *Canvas) PopTransform() { c.Pop() }

func style(col grove.Color) tcell.Style {
	fg := tcell.NewRGBColor(int32(col.R*255), int32(col.G*255), int32(col.B*255))
	return tcell.StyleDefault.Foreground(fg)
}

func (c *Canvas) set(x, y int, r rune, col grove.Color) {
	if col.A <= 0 {
		return
	}
	w, h := c.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	k := cell{x, y}
	if c.capture != nil {
		c.capture[k] = true
		return
	}
	if c.clip != nil && c.clip[k] != (c.clipMode == grove.MaskIntersect) {
		return
	}
	c.screen.SetContent(x, y, r, nil, style(col))
}

// toCell maps a transformed point to its terminal cell.
func (c *Canvas) toCell(p grove.Vec2) (int, int) {
	return int(math.Floor(p.X / c.cw)), int(math.Floor(p.Y / c.ch))
}

// cellCenter returns the center of a terminal cell in screen units.
func (c *Canvas) cellCenter(x, y int) grove.Vec2 {
	return grove.V((float64(x)+0.5)*c.cw, (float64(y)+0.5)*c.ch)
}

// DrawRect implements grove.Canvas.
func (c *Canvas) DrawRect(r grove.Rect, col grove.Color, fill bool) {
	c.DrawPolygon([]grove.Vec2{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}, col, fill)
}

// DrawCircle implements grove.Canvas.
func (c *Canvas) DrawCircle(center grove.Vec2, radius float64, col grove.Color, fill bool) {
	m := c.Current()
	p := m.Apply(center)
	s := m.ScaleFactors()
	r := radius * (s.X + s.Y) / 2
	x0, y0 := c.toCell(p.Sub(grove.V(r, r)))
	x1, y1 := c.toCell(p.Add(grove.V(r, r)))
	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := c.cellCenter(x, y).Dist(p)
			switch {
			case fill && d <= r:
				c.set(x, y, glyphFill, col)
				drawn = true
			case !fill && math.Abs(d-r) <= math.Max(c.cw, c.ch)/2:
				c.set(x, y, glyphStroke, col)
				drawn = true
			}
		}
	}
	if !drawn {
		x, y := c.toCell(p)
		c.set(x, y, glyphDot, col)
	}
}

// DrawPolygon implements grove.Canvas. Shapes smaller than a cell still
// mark the cell under their first point.
func (c *Canvas) DrawPolygon(pts []grove.Vec2, col grove.Color, fill bool) {
	if len(pts) == 0 {
		return
	}
	m := c.Current()
	tp := make([]grove.Vec2, len(pts))
	for i, p := range pts {
		tp[i] = m.Apply(p)
	}
	if !fill {
		for i := range tp {
			c.line(tp[i], tp[(i+1)%len(tp)], col)
		}
		return
	}
	b := grove.Poly{Points: tp}.Bounds()
	x0, y0 := c.toCell(grove.V(b.X, b.Y))
	x1, y1 := c.toCell(grove.V(b.X+b.Width, b.Y+b.Height))
	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if insidePolygon(c.cellCenter(x, y), tp) {
				c.set(x, y, glyphFill, col)
				drawn = true
			}
		}
	}
	if !drawn {
		x, y := c.toCell(tp[0])
		c.set(x, y, glyphDot, col)
	}
}

// line rasterizes a segment with Bresenham's algorithm.
func (c *Canvas) line(a, b grove.Vec2, col grove.Color) {
	x0, y0 := c.toCell(a)
	x1, y1 := c.toCell(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		c.set(x0, y0, glyphStroke, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawText implements grove.Canvas; one rune per cell.
func (c *Canvas) DrawText(p grove.Vec2, text string, col grove.Color) {
	x, y := c.toCell(c.Current().Apply(p))
	x0 := x
	for _, r := range text {
		if r == '\n' {
			x = x0
			y++
			continue
		}
		c.set(x, y, r, col)
		x++
	}
}

// Masked implements grove.Canvas. The mask's covered cells are captured
// first; content then draws only inside (intersect) or outside (subtract)
// them.
func (c *Canvas) Masked(mode grove.MaskMode, mask func(), content func()) {
	if mode == grove.MaskNone {
		content()
		return
	}
	prevCapture, prevClip, prevMode := c.capture, c.clip, c.clipMode
	c.capture = make(map[cell]bool)
	mask()
	covered := c.capture
	c.capture = prevCapture

	c.clip, c.clipMode = covered, mode
	content()
	c.clip, c.clipMode = prevClip, prevMode
}

// insidePolygon is the even-odd point-in-polygon test.
func insidePolygon(p grove.Vec2, pts []grove.Vec2) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// Reset clears the transform stack and any mask state.
func (c *Canvas) Reset() {
	c.TransformStack.Reset()
	c.capture, c.clip = nil, nil
}
