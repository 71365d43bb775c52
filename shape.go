package grove

import "math"

// Shape is a collision or hit-test shape. Shapes are values; Transform
// returns a new shape in the target space.
type Shape interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() Rect
	// Transform maps the shape through m.
	Transform(m Affine) Shape
	// Contains reports whether p lies inside or on the shape.
	Contains(p Vec2) bool
}

// Poly is a convex polygon. Points may be in either winding order.
type Poly struct {
	Points []Vec2
}

// RectPoly returns the four corners of r as a polygon, clockwise in Y-down
// space starting at the top-left.
func RectPoly(r Rect) Poly {
	return Poly{Points: []Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}}
}

// Bounds implements Shape.
func (p Poly) Bounds() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Transform implements Shape.
func (p Poly) Transform(m Affine) Shape {
	out := make([]Vec2, len(p.Points))
	for i, pt := range p.Points {
		out[i] = m.Apply(pt)
	}
	return Poly{Points: out}
}

// Contains reports whether pt lies inside a convex polygon using cross-product sign test.
func (p Poly) Contains(pt Vec2) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	// Check that the point is on the same side of every edge.
	var positive, negative bool
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		cross := (b.X-a.X)*(pt.Y-a.Y) - (b.Y-a.Y)*(pt.X-a.X)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// Circle is a circle shape.
type Circle struct {
	Center Vec2
	Radius float64
}

// Bounds implements Shape.
func (c Circle) Bounds() Rect {
	return Rect{c.Center.X - c.Radius, c.Center.Y - c.Radius, c.Radius * 2, c.Radius * 2}
}

// Transform implements Shape. Non-uniform scale is approximated by the
// larger axis scale.
func (c Circle) Transform(m Affine) Shape {
	s := m.ScaleFactors()
	return Circle{Center: m.Apply(c.Center), Radius: c.Radius * math.Max(s.X, s.Y)}
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Vec2) bool {
	d := p.Sub(c.Center)
	return d.LenSq() <= c.Radius*c.Radius
}
